package imaging

import (
	"image/color"

	"github.com/anthonynsimon/bild/math/f64"
	"github.com/anthonynsimon/bild/parallel"
)

// OverlayBlend composes overlay over base with the Porter-Duff "over" operator,
// scaling the overlay's own alpha by opacity.
//
// Both rasters must have the same dimensions; callers resize the overlay with
// CoverResize first. opacity is clamped to [0,1]. With ea the effective
// overlay alpha, each output pixel is
//
//	outA = ea + baseA*(1-ea)
//	outC = (overC*ea + baseC*baseA*(1-ea)) / outA
//
// in normalized units, then rounded back to 0..255. Where ea is zero the base
// pixel is kept as is.
func OverlayBlend(base, overlay *Raster, opacity float64) (*Raster, error) {
	const op = "overlay_blend"

	if !isFinite(opacity) {
		return nil, newError(InvalidParameter, op, nil, "opacity must be finite, got %v", opacity)
	}
	if !base.SameSize(overlay) {
		return nil, newError(InvalidParameter, op, nil, "overlay is %dx%d, base is %dx%d",
			overlay.Width, overlay.Height, base.Width, base.Height)
	}

	opacity = f64.Clamp(opacity, 0, 1)
	out := base.Clone()
	if opacity == 0 {
		return out, nil
	}

	rowBytes := base.Width * 4
	parallel.Line(base.Height, func(start, end int) {
		for i := start * rowBytes; i < end*rowBytes; i += 4 {
			b := out.Pix[i : i+4 : i+4]
			o := overlay.Pix[i : i+4 : i+4]
			c := blendPixel(
				color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]},
				color.NRGBA{R: o[0], G: o[1], B: o[2], A: o[3]},
				opacity,
			)
			b[0], b[1], b[2], b[3] = c.R, c.G, c.B, c.A
		}
	})
	return out, nil
}

// blendPixel applies the opacity-scaled over operator to a single pixel.
func blendPixel(base, over color.NRGBA, opacity float64) color.NRGBA {
	ea := float64(over.A) / 255 * opacity
	if ea == 0 {
		return base
	}
	ba := float64(base.A) / 255
	rest := ba * (1 - ea)
	outA := ea + rest
	if outA <= 0 {
		return color.NRGBA{}
	}

	mix := func(oc, bc uint8) uint8 {
		return toChannel((float64(oc)*ea + float64(bc)*rest) / outA)
	}
	return color.NRGBA{
		R: mix(over.R, base.R),
		G: mix(over.G, base.G),
		B: mix(over.B, base.B),
		A: toChannel(outA * 255),
	}
}
