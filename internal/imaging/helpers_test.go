package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// createInMemoryRaster creates a raster filled with a single colour.
func createInMemoryRaster(t *testing.T, width, height int, c color.NRGBA) *Raster {
	t.Helper()
	r, err := NewRaster(width, height)
	require.NoError(t, err)
	r.Fill(c)
	return r
}

// createPatternRaster creates a raster where every pixel is distinct and
// alpha varies, so orientation and alpha handling bugs show up.
func createPatternRaster(width, height int) *Raster {
	r := &Raster{Width: width, Height: height, Pix: make([]uint8, width*height*4)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.Set(x, y, color.NRGBA{
				R: uint8(x * 255 / max(width-1, 1)),
				G: uint8(y * 255 / max(height-1, 1)),
				B: uint8((x*7 + y*13) % 256),
				A: uint8(255 - (x+y)%4*60),
			})
		}
	}
	return r
}

// encodeStdPNG encodes img with the standard library so tests do not depend
// on Codec.Encode when exercising Codec.Decode.
func encodeStdPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidNRGBA(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
