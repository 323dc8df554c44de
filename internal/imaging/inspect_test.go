package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSquareIsh(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tolerance     float64
		want          bool
	}{
		{"exact square", 100, 100, DefaultSquareTolerance, true},
		{"at upper tolerance", 102, 100, DefaultSquareTolerance, true},
		{"just above tolerance", 103, 100, DefaultSquareTolerance, false},
		{"at lower tolerance", 98, 100, DefaultSquareTolerance, true},
		{"just below tolerance", 97, 100, DefaultSquareTolerance, false},
		{"landscape", 100, 50, DefaultSquareTolerance, false},
		{"portrait", 50, 100, DefaultSquareTolerance, false},
		{"zero tolerance", 101, 100, 0, false},
		{"negative tolerance treated as zero", 50, 50, -1, true},
		{"wide tolerance", 120, 100, 0.25, true},
		{"invalid dims", 0, 0, DefaultSquareTolerance, false},
		{"one pixel", 1, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSquareIsh(tt.width, tt.height, tt.tolerance))
		})
	}
}

func TestCropThenIsSquareIsh(t *testing.T) {
	for _, dims := range [][2]int{{30, 20}, {7, 19}, {5, 5}} {
		src := createPatternRaster(dims[0], dims[1])
		side := min(dims[0], dims[1])

		got, err := CropSquare(src, Rect{X: 0, Y: 0, Size: side})
		require.NoError(t, err)
		assert.True(t, IsSquareIsh(got.Width, got.Height, 0), "%v", dims)
	}
}

func TestHasAlpha(t *testing.T) {
	assert.False(t, HasAlpha(createInMemoryRaster(t, 3, 3, red)))
	assert.True(t, HasAlpha(createPatternRaster(3, 3)))

	r := createInMemoryRaster(t, 3, 3, red)
	r.Set(2, 2, color.NRGBA{255, 0, 0, 254})
	assert.True(t, HasAlpha(r))
}

func TestAverageColor(t *testing.T) {
	t.Run("solid", func(t *testing.T) {
		got := AverageColor(createInMemoryRaster(t, 4, 4, color.NRGBA{255, 0, 0, 255}))
		assert.Equal(t, "#FF0000", got.Hex)
		assert.Equal(t, RGBAColor{255, 0, 0, 255}, got.RGBA)
		assert.Equal(t, HSLColor{H: 0, S: 100, L: 50}, got.HSL)
	})

	t.Run("transparent pixels do not tint", func(t *testing.T) {
		r := createInMemoryRaster(t, 2, 1, color.NRGBA{0, 0, 255, 255})
		r.Set(1, 0, color.NRGBA{255, 255, 0, 0})

		got := AverageColor(r)
		assert.Equal(t, "#0000FF", got.Hex)
		assert.Equal(t, uint8(128), got.RGBA.A)
		assert.Equal(t, 240, got.HSL.H)
	})

	t.Run("two halves", func(t *testing.T) {
		r := createInMemoryRaster(t, 2, 1, color.NRGBA{0, 0, 0, 255})
		r.Set(1, 0, color.NRGBA{255, 255, 255, 255})

		got := AverageColor(r)
		assert.Equal(t, RGBAColor{128, 128, 128, 255}, got.RGBA)
		assert.Equal(t, "#808080", got.Hex)
		assert.Equal(t, 0, got.HSL.S)
	})

	t.Run("fully transparent", func(t *testing.T) {
		got := AverageColor(createInMemoryRaster(t, 2, 2, color.NRGBA{9, 9, 9, 0}))
		assert.Equal(t, RGBAColor{}, got.RGBA)
		assert.Equal(t, "#000000", got.Hex)
	})
}

func TestDescribe(t *testing.T) {
	info := Describe(createInMemoryRaster(t, 102, 100, red), "png", DefaultSquareTolerance)
	assert.Equal(t, 102, info.Width)
	assert.Equal(t, 100, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.False(t, info.HasAlpha)
	assert.True(t, info.SquareIsh)
	assert.InDelta(t, 1.02, info.AspectRatio, 1e-9)
	assert.Equal(t, "#FF0000", info.AverageColor.Hex)
}
