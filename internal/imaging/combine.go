package imaging

import (
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/parallel"
)

// AxisKind selects how two rasters are partitioned by Combine.
type AxisKind int

const (
	// TopBottom takes the top half from the overlay.
	TopBottom AxisKind = iota
	// BottomTop takes the bottom half from the overlay.
	BottomTop
	// LeftRight takes the left half from the overlay.
	LeftRight
	// RightLeft takes the right half from the overlay.
	RightLeft
	// DiagonalTLBR takes the triangle above the top-left to bottom-right diagonal from the overlay.
	DiagonalTLBR
	// DiagonalTRBL takes the triangle above the top-right to bottom-left diagonal from the overlay.
	DiagonalTRBL
	// SquareRegion places the overlay inside a square rect of the base.
	SquareRegion
)

var axisNames = []struct {
	kind AxisKind
	name string
}{
	{TopBottom, "top-bottom"},
	{BottomTop, "bottom-top"},
	{LeftRight, "left-right"},
	{RightLeft, "right-left"},
	{DiagonalTLBR, "diagonal-tl-br"},
	{DiagonalTRBL, "diagonal-tr-bl"},
	{SquareRegion, "square"},
}

func (k AxisKind) String() string {
	for _, a := range axisNames {
		if a.kind == k {
			return a.name
		}
	}
	return fmt.Sprintf("AxisKind(%d)", int(k))
}

// ParseAxis resolves an axis name such as "top-bottom" or "diagonal-tl-br".
// Underscores are accepted in place of dashes.
func ParseAxis(name string) (AxisKind, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, a := range axisNames {
		if a.name == n {
			return a.kind, nil
		}
	}
	return 0, newError(InvalidParameter, "parse_axis", nil,
		"unknown combine axis %q (want one of %s)", name, strings.Join(AxisNames(), ", "))
}

// AxisNames lists the accepted axis names.
func AxisNames() []string {
	names := make([]string, len(axisNames))
	for i, a := range axisNames {
		names[i] = a.name
	}
	return names
}

// CombineAxis is a combination strategy. Rect is only used by SquareRegion.
type CombineAxis struct {
	Kind AxisKind
	Rect Rect
}

// Split returns a non-region axis.
func Split(kind AxisKind) CombineAxis {
	return CombineAxis{Kind: kind}
}

// Region returns a SquareRegion axis for rect.
func Region(rect Rect) CombineAxis {
	return CombineAxis{Kind: SquareRegion, Rect: rect}
}

// selector reports whether pixel (x, y) of a width x height raster comes from
// the overlay. Integer arithmetic keeps the diagonals exact: pixels lying on
// a diagonal belong to the base.
func (a CombineAxis) selector(width, height int) (func(x, y int) bool, error) {
	switch a.Kind {
	case TopBottom:
		return func(_, y int) bool { return y < height/2 }, nil
	case BottomTop:
		return func(_, y int) bool { return y >= height/2 }, nil
	case LeftRight:
		return func(x, _ int) bool { return x < width/2 }, nil
	case RightLeft:
		return func(x, _ int) bool { return x >= width/2 }, nil
	case DiagonalTLBR:
		return func(x, y int) bool { return y*width < x*height }, nil
	case DiagonalTRBL:
		return func(x, y int) bool { return y*width < (width-1-x)*height }, nil
	case SquareRegion:
		if err := a.Rect.Validate(width, height); err != nil {
			return nil, newError(InvalidParameter, "combine", err, "invalid square region")
		}
		return a.Rect.Contains, nil
	default:
		return nil, newError(InvalidParameter, "combine", nil, "unknown combine axis %d", int(a.Kind))
	}
}

// Mask returns the pixel-ownership grid of axis for a width x height raster,
// indexed [y][x]. true means the pixel is taken from the overlay.
func Mask(width, height int, axis CombineAxis) ([][]bool, error) {
	if width <= 0 || height <= 0 {
		return nil, newError(InvalidParameter, "mask", nil,
			"mask dimensions must be positive, got %dx%d", width, height)
	}
	sel, err := axis.selector(width, height)
	if err != nil {
		return nil, err
	}
	mask := make([][]bool, height)
	for y := range mask {
		row := make([]bool, width)
		for x := range row {
			row[x] = sel(x, y)
		}
		mask[y] = row
	}
	return mask, nil
}

// Combine merges overlay into base according to axis.
//
// The overlay is cover-resized to the base size, or to the rect size for
// SquareRegion, using filter. Ownership is a hard per-pixel decision; no
// blending happens along the boundary.
func Combine(base, overlay *Raster, axis CombineAxis, filter ResampleFilter) (*Raster, error) {
	sel, err := axis.selector(base.Width, base.Height)
	if err != nil {
		return nil, err
	}

	if axis.Kind == SquareRegion {
		rc := axis.Rect
		fitted, err := CoverResize(overlay, rc.Size, rc.Size, filter)
		if err != nil {
			return nil, Annotate(err, "resize overlay to region")
		}
		out := base.Clone()
		paste(out, fitted, rc.X, rc.Y)
		return out, nil
	}

	fitted, err := CoverResize(overlay, base.Width, base.Height, filter)
	if err != nil {
		return nil, Annotate(err, "resize overlay to base")
	}
	out := base.Clone()
	parallel.Line(base.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < base.Width; x++ {
				if sel(x, y) {
					i := out.offset(x, y)
					copy(out.Pix[i:i+4], fitted.Pix[i:i+4])
				}
			}
		}
	})
	return out, nil
}

// BlendSquareRegion places overlay inside rect like Combine with SquareRegion,
// but composes it over the base with OverlayBlend instead of replacing the
// pixels. Transparent overlay pixels therefore let the base show through.
func BlendSquareRegion(base, overlay *Raster, rect Rect, opacity float64, filter ResampleFilter) (*Raster, error) {
	if err := rect.Validate(base.Width, base.Height); err != nil {
		return nil, newError(InvalidParameter, "blend_square_region", err, "invalid square region")
	}
	fitted, err := CoverResize(overlay, rect.Size, rect.Size, filter)
	if err != nil {
		return nil, Annotate(err, "resize overlay to region")
	}

	region, err := CropSquare(base, rect)
	if err != nil {
		return nil, err
	}
	blended, err := OverlayBlend(region, fitted, opacity)
	if err != nil {
		return nil, err
	}

	out := base.Clone()
	paste(out, blended, rect.X, rect.Y)
	return out, nil
}

// paste copies src into dst with its top-left corner at (x, y). src must fit.
func paste(dst, src *Raster, x, y int) {
	n := src.Width * 4
	for row := 0; row < src.Height; row++ {
		s := src.offset(0, row)
		d := dst.offset(x, y+row)
		copy(dst.Pix[d:d+n], src.Pix[s:s+n])
	}
}
