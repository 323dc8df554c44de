package imaging

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayBlend_ZeroOpacityKeepsBase(t *testing.T) {
	base := createPatternRaster(9, 7)
	base.Set(0, 0, color.NRGBA{200, 100, 50, 0}) // transparent but coloured
	overlay := createInMemoryRaster(t, 9, 7, color.NRGBA{0, 255, 0, 255})

	for _, opacity := range []float64{0, -0.5} {
		got, err := OverlayBlend(base, overlay, opacity)
		require.NoError(t, err)
		assert.True(t, got.Equal(base), "opacity %v", opacity)
	}
}

func TestOverlayBlend_OpaqueOverlayFullOpacity(t *testing.T) {
	base := createPatternRaster(9, 7)
	overlay := createPatternRaster(9, 7)
	for i := 3; i < len(overlay.Pix); i += 4 {
		overlay.Pix[i] = 255
	}
	overlay = Invert(overlay)

	for _, opacity := range []float64{1, 3.5} {
		got, err := OverlayBlend(base, overlay, opacity)
		require.NoError(t, err)
		assert.True(t, got.Equal(overlay), "opacity %v", opacity)
	}
}

func TestOverlayBlend_HalfAlphaAveragesOnOpaqueBase(t *testing.T) {
	tests := []struct {
		base, over color.NRGBA
	}{
		{color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 255, 128}},
		{color.NRGBA{10, 200, 90, 255}, color.NRGBA{250, 20, 30, 128}},
		{color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 128}},
	}

	for _, tt := range tests {
		base := createInMemoryRaster(t, 3, 3, tt.base)
		overlay := createInMemoryRaster(t, 3, 3, tt.over)

		got, err := OverlayBlend(base, overlay, 1)
		require.NoError(t, err)

		c := got.At(1, 1)
		assert.Equal(t, uint8(255), c.A)
		avg := func(a, b uint8) uint8 { return uint8((int(a) + int(b) + 1) / 2) }
		assert.LessOrEqual(t, absDiff(c.R, avg(tt.base.R, tt.over.R)), 1, "R of %v over %v", tt.over, tt.base)
		assert.LessOrEqual(t, absDiff(c.G, avg(tt.base.G, tt.over.G)), 1, "G of %v over %v", tt.over, tt.base)
		assert.LessOrEqual(t, absDiff(c.B, avg(tt.base.B, tt.over.B)), 1, "B of %v over %v", tt.over, tt.base)
	}
}

func TestOverlayBlend_BothPartiallyTransparent(t *testing.T) {
	// A naive lerp would give {128 0 128 128}. The over operator keeps more
	// of the overlay's colour and produces a more opaque result.
	base := createInMemoryRaster(t, 2, 2, color.NRGBA{0, 0, 255, 128})
	overlay := createInMemoryRaster(t, 2, 2, color.NRGBA{255, 0, 0, 128})

	got, err := OverlayBlend(base, overlay, 1)
	require.NoError(t, err)

	c := got.At(0, 0)
	assert.LessOrEqual(t, absDiff(c.A, 192), 1, "alpha %d", c.A)
	assert.LessOrEqual(t, absDiff(c.R, 170), 1, "red %d", c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.LessOrEqual(t, absDiff(c.B, 85), 1, "blue %d", c.B)
}

func TestOverlayBlend_TransparentOverlayOverTransparentBase(t *testing.T) {
	base := createInMemoryRaster(t, 2, 2, color.NRGBA{1, 2, 3, 0})
	overlay := createInMemoryRaster(t, 2, 2, color.NRGBA{9, 9, 9, 0})

	got, err := OverlayBlend(base, overlay, 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(base))
}

func TestOverlayBlend_OpacityScalesOverlay(t *testing.T) {
	base := createInMemoryRaster(t, 1, 1, color.NRGBA{0, 0, 0, 255})
	overlay := createInMemoryRaster(t, 1, 1, color.NRGBA{200, 200, 200, 255})

	got, err := OverlayBlend(base, overlay, 0.25)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{50, 50, 50, 255}, got.At(0, 0))
}

func TestOverlayBlend_DoesNotModifyInputs(t *testing.T) {
	base := createPatternRaster(6, 6)
	overlay := Invert(createPatternRaster(6, 6))
	baseCopy, overlayCopy := base.Clone(), overlay.Clone()

	_, err := OverlayBlend(base, overlay, 0.6)
	require.NoError(t, err)
	assert.True(t, base.Equal(baseCopy))
	assert.True(t, overlay.Equal(overlayCopy))
}

func TestOverlayBlend_InvalidInput(t *testing.T) {
	base := createPatternRaster(4, 4)

	_, err := OverlayBlend(base, createPatternRaster(4, 5), 1)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = OverlayBlend(base, base, math.NaN())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}
