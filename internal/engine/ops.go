package engine

import (
	"strings"

	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
)

// Grayscale converts the image to luma, keeping alpha.
func (e *Engine) Grayscale(data []byte) ([]byte, error) {
	return e.apply("grayscale", data, pure(imaging.Grayscale))
}

// Invert inverts the colour channels, keeping alpha.
func (e *Engine) Invert(data []byte) ([]byte, error) {
	return e.apply("invert", data, pure(imaging.Invert))
}

// Sepia applies a sepia tone.
func (e *Engine) Sepia(data []byte) ([]byte, error) {
	return e.apply("sepia", data, pure(imaging.Sepia))
}

// Brighten adds delta to every colour channel. delta is clamped to ±255.
func (e *Engine) Brighten(data []byte, delta int) ([]byte, error) {
	return e.apply("brighten", data, func(r *imaging.Raster) (*imaging.Raster, error) {
		return imaging.Brighten(r, delta), nil
	})
}

// AdjustContrast scales each channel's distance from mid-gray by 1+factor.
func (e *Engine) AdjustContrast(data []byte, factor float64) ([]byte, error) {
	return e.apply("adjust_contrast", data, func(r *imaging.Raster) (*imaging.Raster, error) {
		return imaging.AdjustContrast(r, factor)
	})
}

// Blur applies a Gaussian blur. sigma <= 0 leaves the pixels unchanged.
func (e *Engine) Blur(data []byte, sigma float64) ([]byte, error) {
	return e.apply("blur", data, func(r *imaging.Raster) (*imaging.Raster, error) {
		return imaging.Blur(r, sigma)
	})
}

// Rotate90 rotates the image a quarter turn clockwise.
func (e *Engine) Rotate90(data []byte) ([]byte, error) {
	return e.apply("rotate90", data, pure(imaging.Rotate90))
}

// Rotate180 rotates the image half a turn.
func (e *Engine) Rotate180(data []byte) ([]byte, error) {
	return e.apply("rotate180", data, pure(imaging.Rotate180))
}

// Rotate270 rotates the image three quarter turns clockwise.
func (e *Engine) Rotate270(data []byte) ([]byte, error) {
	return e.apply("rotate270", data, pure(imaging.Rotate270))
}

// FlipH mirrors the image left to right.
func (e *Engine) FlipH(data []byte) ([]byte, error) {
	return e.apply("flip_h", data, pure(imaging.FlipHorizontal))
}

// FlipV mirrors the image top to bottom.
func (e *Engine) FlipV(data []byte) ([]byte, error) {
	return e.apply("flip_v", data, pure(imaging.FlipVertical))
}

// CropSquare extracts the size x size square whose top-left corner is (x, y).
// A square that does not fit inside the image is an InvalidParameter error.
func (e *Engine) CropSquare(data []byte, x, y, size int) ([]byte, error) {
	return e.apply("crop_square", data, func(r *imaging.Raster) (*imaging.Raster, error) {
		return imaging.CropSquare(r, imaging.Rect{X: x, Y: y, Size: size})
	})
}

// OverlayTransparent cover-resizes overlay to the base size and composes it
// over base with the given opacity (clamped to [0,1]).
func (e *Engine) OverlayTransparent(base, overlay []byte, opacity float64) ([]byte, error) {
	return e.apply2("overlay_transparent", base, overlay, func(b, o *imaging.Raster) (*imaging.Raster, error) {
		fitted, err := imaging.CoverResize(o, b.Width, b.Height, e.filter)
		if err != nil {
			return nil, err
		}
		return imaging.OverlayBlend(b, fitted, opacity)
	})
}

// CombineTopBottom takes the top half from overlay and the bottom half from base.
func (e *Engine) CombineTopBottom(base, overlay []byte) ([]byte, error) {
	return e.combine("combine_top_bottom", base, overlay, imaging.Split(imaging.TopBottom))
}

// CombineBottomTop takes the bottom half from overlay and the top half from base.
func (e *Engine) CombineBottomTop(base, overlay []byte) ([]byte, error) {
	return e.combine("combine_bottom_top", base, overlay, imaging.Split(imaging.BottomTop))
}

// CombineLeftRight takes the left half from overlay and the right half from base.
func (e *Engine) CombineLeftRight(base, overlay []byte) ([]byte, error) {
	return e.combine("combine_left_right", base, overlay, imaging.Split(imaging.LeftRight))
}

// CombineRightLeft takes the right half from overlay and the left half from base.
func (e *Engine) CombineRightLeft(base, overlay []byte) ([]byte, error) {
	return e.combine("combine_right_left", base, overlay, imaging.Split(imaging.RightLeft))
}

// CombineDiagonalTLBR takes the triangle above the top-left to bottom-right
// diagonal from overlay. Pixels on the diagonal come from base.
func (e *Engine) CombineDiagonalTLBR(base, overlay []byte) ([]byte, error) {
	return e.combine("combine_diagonal_tl_br", base, overlay, imaging.Split(imaging.DiagonalTLBR))
}

// CombineDiagonalTRBL takes the triangle above the top-right to bottom-left
// diagonal from overlay. Pixels on the diagonal come from base.
func (e *Engine) CombineDiagonalTRBL(base, overlay []byte) ([]byte, error) {
	return e.combine("combine_diagonal_tr_bl", base, overlay, imaging.Split(imaging.DiagonalTRBL))
}

// CombineWithSquareRegion cover-resizes overlay to size x size and pastes it
// into base at (x, y).
func (e *Engine) CombineWithSquareRegion(base, overlay []byte, x, y, size int) ([]byte, error) {
	rect := imaging.Rect{X: x, Y: y, Size: size}
	return e.combine("combine_with_square_region", base, overlay, imaging.Region(rect))
}

// BlendWithSquareRegion is CombineWithSquareRegion with the overlay composed
// over the region at the given opacity instead of replacing it.
func (e *Engine) BlendWithSquareRegion(base, overlay []byte, x, y, size int, opacity float64) ([]byte, error) {
	rect := imaging.Rect{X: x, Y: y, Size: size}
	return e.apply2("blend_with_square_region", base, overlay, func(b, o *imaging.Raster) (*imaging.Raster, error) {
		return imaging.BlendSquareRegion(b, o, rect, opacity, e.filter)
	})
}

// Combine merges overlay into base along axis.
func (e *Engine) Combine(base, overlay []byte, axis imaging.CombineAxis) ([]byte, error) {
	op := "combine_" + strings.ReplaceAll(axis.Kind.String(), "-", "_")
	return e.combine(op, base, overlay, axis)
}

func (e *Engine) combine(op string, base, overlay []byte, axis imaging.CombineAxis) ([]byte, error) {
	return e.apply2(op, base, overlay, func(b, o *imaging.Raster) (*imaging.Raster, error) {
		return imaging.Combine(b, o, axis, e.filter)
	})
}

// pure adapts an infallible raster function to apply's signature.
func pure(fn func(*imaging.Raster) *imaging.Raster) func(*imaging.Raster) (*imaging.Raster, error) {
	return func(r *imaging.Raster) (*imaging.Raster, error) {
		return fn(r), nil
	}
}
