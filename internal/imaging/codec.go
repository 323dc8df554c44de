package imaging

import (
	"bytes"
	"image"
	_ "image/gif" // Register GIF format decoder
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/jpegn"
	"github.com/pkg/errors"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// OutputMimeType is the MIME type of every encoded result.
const OutputMimeType = "image/png"

// Default codec limits.
const (
	DefaultMaxInputBytes = 64 << 20
	DefaultMaxPixels     = 100_000_000
)

// CodecOptions configures a Codec.
type CodecOptions struct {
	// AutoOrient applies the EXIF orientation tag of JPEG input after decoding.
	AutoOrient bool

	// MaxInputBytes rejects larger payloads before any parsing. Zero disables the check.
	MaxInputBytes int

	// MaxPixels rejects images whose header declares more pixels than this.
	// It is checked before the pixel data is decoded. Zero disables the check.
	MaxPixels int

	// PNGCompression is the zlib level used for output.
	PNGCompression png.CompressionLevel
}

// DefaultCodecOptions returns the options used when none are configured.
func DefaultCodecOptions() CodecOptions {
	return CodecOptions{
		AutoOrient:     true,
		MaxInputBytes:  DefaultMaxInputBytes,
		MaxPixels:      DefaultMaxPixels,
		PNGCompression: png.DefaultCompression,
	}
}

// Codec converts between encoded image bytes and rasters.
//
// Input may be PNG, JPEG, GIF (first frame), BMP, TIFF or WebP; the format is
// sniffed from the content, never from a file name. Output is always PNG so
// that a decode/encode round trip is lossless.
//
// A Codec holds only its immutable options and is safe for concurrent use.
type Codec struct {
	opts CodecOptions
}

// NewCodec creates a codec with the given options.
func NewCodec(opts CodecOptions) *Codec {
	return &Codec{opts: opts}
}

// Options returns the options the codec was created with.
func (c *Codec) Options() CodecOptions {
	return c.opts
}

// Decode parses data into a raster.
//
// # Errors
//
//   - DecodeError: empty, truncated, malformed or unrecognized data
//   - UnsupportedFormat: a recognized container this build cannot decode
//     (AVIF, HEIC, JPEG XL, PSD, ...), an unsupported colour mode, or an
//     image above MaxPixels
//   - InvalidParameter: data longer than MaxInputBytes
func (c *Codec) Decode(data []byte) (*Raster, error) {
	const op = "decode"

	if len(data) == 0 {
		return nil, newError(DecodeError, op, nil, "image data is empty")
	}
	if c.opts.MaxInputBytes > 0 && len(data) > c.opts.MaxInputBytes {
		return nil, newError(InvalidParameter, op, nil,
			"image data is %d bytes, limit is %d", len(data), c.opts.MaxInputBytes)
	}
	if name, ok := sniffUnsupported(data); ok {
		return nil, newError(UnsupportedFormat, op, nil, "%s images are not supported", name)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, classifyDecodeError(op, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, newError(DecodeError, op, nil, "%s image has invalid dimensions %dx%d",
			format, cfg.Width, cfg.Height)
	}
	if c.opts.MaxPixels > 0 && cfg.Width*cfg.Height > c.opts.MaxPixels {
		return nil, newError(UnsupportedFormat, op, nil,
			"%s image is %dx%d, above the %d pixel limit", format, cfg.Width, cfg.Height, c.opts.MaxPixels)
	}

	var img image.Image
	if format == "jpeg" {
		img, err = jpegn.Decode(bytes.NewReader(data), &jpegn.Options{
			ToRGBA:         true,
			UpsampleMethod: jpegn.CatmullRom,
			AutoRotate:     c.opts.AutoOrient,
		})
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(c.opts.AutoOrient))
	}
	if err != nil {
		return nil, classifyDecodeError(op, err)
	}

	return FromImage(img), nil
}

// Encode serializes r as PNG.
func (c *Codec) Encode(r *Raster) ([]byte, error) {
	const op = "encode"

	if err := r.Validate(); err != nil {
		return nil, newError(EncodeError, op, err, "cannot encode raster")
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, r.Image(), imaging.PNG, imaging.PNGCompressionLevel(c.opts.PNGCompression)); err != nil {
		return nil, newError(EncodeError, op, err, "failed to encode png")
	}
	return buf.Bytes(), nil
}

// DetectFormat returns the format name of data ("png", "jpeg", "gif", "bmp",
// "tiff", "webp"), the name of a recognized but unsupported container, or
// "unknown".
func DetectFormat(data []byte) string {
	if name, ok := sniffUnsupported(data); ok {
		return name
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "unknown"
	}
	return format
}

// unsupportedSignature describes a container we can recognize but not decode.
type unsupportedSignature struct {
	name   string
	offset int
	magic  string
}

var unsupportedSignatures = []unsupportedSignature{
	{"avif", 4, "ftypavif"},
	{"avif", 4, "ftypavis"},
	{"heic", 4, "ftypheic"},
	{"heic", 4, "ftypheix"},
	{"heic", 4, "ftypmif1"},
	{"jxl", 0, "\xff\x0a"},
	{"jxl", 0, "\x00\x00\x00\x0cJXL \x0d\x0a\x87\x0a"},
	{"psd", 0, "8BPS"},
	{"ico", 0, "\x00\x00\x01\x00"},
	{"qoi", 0, "qoif"},
}

func sniffUnsupported(data []byte) (string, bool) {
	for _, sig := range unsupportedSignatures {
		end := sig.offset + len(sig.magic)
		if len(data) >= end && string(data[sig.offset:end]) == sig.magic {
			return sig.name, true
		}
	}
	return "", false
}

// classifyDecodeError maps codec library errors onto our kinds.
func classifyDecodeError(op string, err error) *Error {
	switch {
	case errors.Is(err, image.ErrFormat):
		return newError(DecodeError, op, err, "unrecognized image format")
	case isUnsupported(err):
		return newError(UnsupportedFormat, op, err, "unsupported image encoding")
	default:
		return newError(DecodeError, op, err, "malformed image data")
	}
}

func isUnsupported(err error) bool {
	var (
		pngErr  png.UnsupportedError
		jpegErr jpeg.UnsupportedError
		tiffErr tiff.UnsupportedError
	)
	if errors.As(err, &pngErr) || errors.As(err, &jpegErr) || errors.As(err, &tiffErr) {
		return true
	}
	if errors.Is(err, jpegn.ErrUnsupported) || errors.Is(err, imaging.ErrUnsupportedFormat) {
		return true
	}
	return strings.Contains(err.Error(), "unsupported")
}
