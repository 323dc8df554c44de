package imaging

import (
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultSquareTolerance is the relative aspect-ratio tolerance used by
// IsSquareIsh when none is configured: 2% either side of 1.0.
const DefaultSquareTolerance = 0.02

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// Info describes a decoded image.
//
// It is the result of the inspection tool and is meant for hosts deciding
// which operation to offer next (for example whether to show a crop UI at all).
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the sniffed input format, e.g. "png" or "jpeg".
	Format string `json:"format"`

	// HasAlpha is true when at least one pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// AspectRatio is Width / Height.
	AspectRatio float64 `json:"aspect_ratio"`

	// SquareIsh reports IsSquareIsh(Width, Height, tolerance).
	SquareIsh bool `json:"square_ish"`

	// AverageColor is the alpha-weighted mean colour of all pixels.
	AverageColor ColorResult `json:"average_color"`
}

// IsSquareIsh reports whether a width x height image is close enough to
// square that no crop selection is needed.
//
// Parameters:
//   - width, height: image dimensions in pixels. Non-positive values are never square.
//   - tolerance: allowed relative deviation of width/height from 1.0. Negative
//     values are treated as zero (exactly square only).
//
// The check is inclusive: with the default tolerance of 0.02, a 102x100
// image is square-ish and a 103x100 image is not.
func IsSquareIsh(width, height int, tolerance float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == height {
		return true
	}
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = 0
	}
	ratio := float64(width) / float64(height)
	// Tiny epsilon so that ratios landing exactly on the edge are not lost to
	// float rounding.
	const eps = 1e-9
	return ratio >= 1-tolerance-eps && ratio <= 1+tolerance+eps
}

// HasAlpha reports whether any pixel of r is not fully opaque.
func HasAlpha(r *Raster) bool {
	for i := 3; i < len(r.Pix); i += 4 {
		if r.Pix[i] != 0xff {
			return true
		}
	}
	return false
}

// AverageColor computes the mean colour of r.
//
// Colour channels are weighted by alpha so transparent pixels, whatever RGB
// they happen to store, do not shift the result. The returned alpha is the
// plain mean alpha. A fully transparent raster averages to transparent black.
func AverageColor(r *Raster) ColorResult {
	var sumR, sumG, sumB, sumA float64
	for i := 0; i < len(r.Pix); i += 4 {
		a := float64(r.Pix[i+3])
		sumR += float64(r.Pix[i]) * a
		sumG += float64(r.Pix[i+1]) * a
		sumB += float64(r.Pix[i+2]) * a
		sumA += a
	}

	n := float64(r.Width * r.Height)
	avg := RGBAColor{A: toChannel(sumA / n)}
	if sumA > 0 {
		avg.R = toChannel(sumR / sumA)
		avg.G = toChannel(sumG / sumA)
		avg.B = toChannel(sumB / sumA)
	}
	return newColorResult(avg)
}

func newColorResult(c RGBAColor) ColorResult {
	cf := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Clamped()
	h, s, l := cf.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return ColorResult{
		Hex:  strings.ToUpper(cf.Hex()),
		RGBA: c,
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}

// Describe builds the Info for a raster decoded from data in the given format.
func Describe(r *Raster, format string, tolerance float64) *Info {
	return &Info{
		Width:        r.Width,
		Height:       r.Height,
		Format:       format,
		HasAlpha:     HasAlpha(r),
		AspectRatio:  float64(r.Width) / float64(r.Height),
		SquareIsh:    IsSquareIsh(r.Width, r.Height, tolerance),
		AverageColor: AverageColor(r),
	}
}
