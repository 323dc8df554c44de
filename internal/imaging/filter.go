package imaging

import (
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/math/f64"
	"github.com/disintegration/imaging"
)

// Parameter limits. Values outside these ranges are clamped, not rejected.
const (
	MaxBrightnessDelta = 255
	MinContrastFactor  = -1.0
	MaxContrastFactor  = 100.0
	MaxBlurSigma       = 64.0
)

// sepiaMatrix is the conventional sepia tone mixing matrix (rows R', G', B').
var sepiaMatrix = [3][3]float64{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

// toChannel rounds v to the nearest integer and clamps it to [0,255].
func toChannel(v float64) uint8 {
	return uint8(f64.Clamp(math.Round(v), 0, 255))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Grayscale replaces RGB with the ITU-R BT.601 luma 0.299R + 0.587G + 0.114B.
// Alpha is unchanged.
func Grayscale(r *Raster) *Raster {
	return FromImage(imaging.Grayscale(r.Image()))
}

// Invert replaces each colour channel c with 255 - c. Alpha is unchanged.
func Invert(r *Raster) *Raster {
	return FromImage(imaging.Invert(r.Image()))
}

// Sepia applies the sepia mixing matrix to RGB and clamps. Alpha is unchanged.
func Sepia(r *Raster) *Raster {
	return FromImage(imaging.AdjustFunc(r.Image(), func(c color.NRGBA) color.NRGBA {
		rf, gf, bf := float64(c.R), float64(c.G), float64(c.B)
		m := &sepiaMatrix
		return color.NRGBA{
			R: toChannel(m[0][0]*rf + m[0][1]*gf + m[0][2]*bf),
			G: toChannel(m[1][0]*rf + m[1][1]*gf + m[1][2]*bf),
			B: toChannel(m[2][0]*rf + m[2][1]*gf + m[2][2]*bf),
			A: c.A,
		}
	}))
}

// Brighten adds delta to every colour channel, clamping to [0,255].
// delta itself is clamped to ±MaxBrightnessDelta so the operation is total.
func Brighten(r *Raster, delta int) *Raster {
	if delta > MaxBrightnessDelta {
		delta = MaxBrightnessDelta
	} else if delta < -MaxBrightnessDelta {
		delta = -MaxBrightnessDelta
	}
	if delta == 0 {
		return r.Clone()
	}

	d := float64(delta)
	return FromImage(imaging.AdjustFunc(r.Image(), func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: toChannel(float64(c.R) + d),
			G: toChannel(float64(c.G) + d),
			B: toChannel(float64(c.B) + d),
			A: c.A,
		}
	}))
}

// AdjustContrast remaps each colour channel through 128 + (c-128)*(1+factor).
//
// factor is clamped to [MinContrastFactor, MaxContrastFactor]: -1 flattens the
// image to mid-gray, 0 is the identity. Non-finite factors are rejected.
func AdjustContrast(r *Raster, factor float64) (*Raster, error) {
	if !isFinite(factor) {
		return nil, newError(InvalidParameter, "adjust_contrast", nil, "contrast factor must be finite, got %v", factor)
	}
	factor = f64.Clamp(factor, MinContrastFactor, MaxContrastFactor)
	if factor == 0 {
		return r.Clone(), nil
	}

	k := 1 + factor
	remap := func(v uint8) uint8 {
		return toChannel(128 + (float64(v)-128)*k)
	}
	return FromImage(imaging.AdjustFunc(r.Image(), func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: remap(c.R), G: remap(c.G), B: remap(c.B), A: c.A}
	})), nil
}

// Blur applies a separable Gaussian blur with standard deviation sigma.
//
// sigma <= 0 is the identity. sigma is capped at MaxBlurSigma. Samples are
// weighted by alpha, so fully transparent pixels do not bleed their colour
// into neighbours.
func Blur(r *Raster, sigma float64) (*Raster, error) {
	if !isFinite(sigma) {
		return nil, newError(InvalidParameter, "blur", nil, "blur sigma must be finite, got %v", sigma)
	}
	if sigma <= 0 {
		return r.Clone(), nil
	}
	sigma = math.Min(sigma, MaxBlurSigma)
	return FromImage(imaging.Blur(r.Image(), sigma)), nil
}
