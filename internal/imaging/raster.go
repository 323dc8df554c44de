package imaging

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Raster is an uncompressed pixel grid with interleaved 8-bit RGBA samples.
//
// Alpha is straight (non-premultiplied): colour channels are independent of
// the alpha channel. Pix holds exactly Width*Height*4 bytes, rows top to
// bottom with no padding.
//
// Operations in this package never modify their input rasters; they always
// return a newly allocated result. Rasters handed out by a RasterCache rely on
// this and must be treated as read-only by callers as well.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a fully transparent raster.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, newError(InvalidParameter, "new_raster", nil,
			"raster dimensions must be positive, got %dx%d", width, height)
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// FromImage converts any image.Image into a Raster.
//
// A compact *image.NRGBA anchored at the origin (which is what every
// disintegration/imaging operation returns) is adopted without copying.
// Everything else is converted through imaging.Clone, which un-premultiplies.
func FromImage(img image.Image) *Raster {
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != nrgba.Rect.Dx()*4 {
		nrgba = imaging.Clone(img)
	}
	return &Raster{
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Pix:    nrgba.Pix,
	}
}

// Image returns an *image.NRGBA view sharing the raster's pixel buffer.
func (r *Raster) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Validate checks the structural invariants of the raster.
func (r *Raster) Validate() error {
	if r == nil {
		return newError(InvalidParameter, "validate", nil, "raster is nil")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return newError(InvalidParameter, "validate", nil,
			"raster dimensions must be positive, got %dx%d", r.Width, r.Height)
	}
	if want := r.Width * r.Height * 4; len(r.Pix) != want {
		return newError(InvalidParameter, "validate", nil,
			"pixel buffer holds %d bytes, want %d for %dx%d", len(r.Pix), want, r.Width, r.Height)
	}
	return nil
}

func (r *Raster) offset(x, y int) int {
	return (y*r.Width + x) * 4
}

// At returns the pixel at (x, y). Coordinates must be inside the raster.
func (r *Raster) At(x, y int) color.NRGBA {
	i := r.offset(x, y)
	s := r.Pix[i : i+4 : i+4]
	return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// Set stores c at (x, y). Coordinates must be inside the raster.
func (r *Raster) Set(x, y int, c color.NRGBA) {
	i := r.offset(x, y)
	s := r.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
}

// Fill paints every pixel with c.
func (r *Raster) Fill(c color.NRGBA) {
	for i := 0; i < len(r.Pix); i += 4 {
		r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Pix: pix}
}

// Equal reports whether both rasters have the same size and identical pixels.
func (r *Raster) Equal(other *Raster) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Width == other.Width && r.Height == other.Height && bytes.Equal(r.Pix, other.Pix)
}

// SameSize reports whether other has the same dimensions.
func (r *Raster) SameSize(other *Raster) bool {
	return r.Width == other.Width && r.Height == other.Height
}
