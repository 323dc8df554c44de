package imaging

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// ResampleFilter is the interpolation kernel used by CoverResize.
type ResampleFilter = imaging.ResampleFilter

// DefaultResampleFilter is used when no filter is configured.
var DefaultResampleFilter = imaging.Lanczos

var resampleFilters = map[string]ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"mitchell":   imaging.MitchellNetravali,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// ParseResampleFilter looks up a filter by name (case-insensitive).
func ParseResampleFilter(name string) (ResampleFilter, error) {
	f, ok := resampleFilters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ResampleFilter{}, fmt.Errorf("unknown resample filter %q (want one of %s)",
			name, strings.Join(ResampleFilterNames(), ", "))
	}
	return f, nil
}

// ResampleFilterNames lists the accepted filter names in sorted order.
func ResampleFilterNames() []string {
	names := make([]string, 0, len(resampleFilters))
	for name := range resampleFilters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rect is an axis-aligned square region: top-left corner (X, Y) and side Size.
type Rect struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Size int `json:"size"`
}

// Validate checks that the rect lies entirely inside a width x height raster.
func (rc Rect) Validate(width, height int) error {
	if rc.X < 0 || rc.Y < 0 {
		return fmt.Errorf("crop origin (%d,%d) must not be negative", rc.X, rc.Y)
	}
	if rc.Size <= 0 {
		return fmt.Errorf("crop size must be positive, got %d", rc.Size)
	}
	if rc.X+rc.Size > width {
		return fmt.Errorf("crop area exceeds image width: %d + %d > %d", rc.X, rc.Size, width)
	}
	if rc.Y+rc.Size > height {
		return fmt.Errorf("crop area exceeds image height: %d + %d > %d", rc.Y, rc.Size, height)
	}
	return nil
}

// Contains reports whether pixel (x, y) lies inside the rect.
func (rc Rect) Contains(x, y int) bool {
	return x >= rc.X && x < rc.X+rc.Size && y >= rc.Y && y < rc.Y+rc.Size
}

// Bounds converts the rect to an image.Rectangle.
func (rc Rect) Bounds() image.Rectangle {
	return image.Rect(rc.X, rc.Y, rc.X+rc.Size, rc.Y+rc.Size)
}

// Rotate90 rotates the raster 90 degrees clockwise.
func Rotate90(r *Raster) *Raster {
	// imaging rotates counter-clockwise.
	return FromImage(imaging.Rotate270(r.Image()))
}

// Rotate180 rotates the raster by 180 degrees.
func Rotate180(r *Raster) *Raster {
	return FromImage(imaging.Rotate180(r.Image()))
}

// Rotate270 rotates the raster 270 degrees clockwise (90 counter-clockwise).
func Rotate270(r *Raster) *Raster {
	return FromImage(imaging.Rotate90(r.Image()))
}

// FlipHorizontal mirrors the raster across its vertical axis.
func FlipHorizontal(r *Raster) *Raster {
	return FromImage(imaging.FlipH(r.Image()))
}

// FlipVertical mirrors the raster across its horizontal axis.
func FlipVertical(r *Raster) *Raster {
	return FromImage(imaging.FlipV(r.Image()))
}

// CropSquare extracts the square sub-raster described by rect.
//
// The rect must lie fully inside the raster. Out-of-bounds requests fail with
// InvalidParameter instead of being clamped: the coordinates normally come
// from an already validated selection, so a mismatch is a caller bug.
func CropSquare(r *Raster, rect Rect) (*Raster, error) {
	if err := rect.Validate(r.Width, r.Height); err != nil {
		return nil, newError(InvalidParameter, "crop_square", err, "invalid crop rectangle")
	}
	return FromImage(imaging.Crop(r.Image(), rect.Bounds())), nil
}

// CoverResize scales r, preserving its aspect ratio, until it covers a
// width x height area, then crops the excess symmetrically so the result is
// exactly width x height.
//
// The scale factor is max(width/srcWidth, height/srcHeight). Centering the
// crop keeps centered content (a round badge, a face) intact. A raster that
// already has the target size is returned as an exact copy.
func CoverResize(r *Raster, width, height int, filter ResampleFilter) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, newError(InvalidParameter, "cover_resize", nil,
			"target size must be positive, got %dx%d", width, height)
	}
	if r.Width == width && r.Height == height {
		return r.Clone(), nil
	}
	return FromImage(imaging.Fill(r.Image(), width, height, imaging.Center, filter)), nil
}
