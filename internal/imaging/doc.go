// Package imaging implements the pixel operations behind the engine: decoding
// and encoding, per-pixel filters, geometric transforms, alpha compositing and
// region combination.
//
// All operations work on Raster, a compact straight-alpha RGBA grid with
// (0,0) at the top-left corner, X increasing rightward and Y downward.
//
// # Ownership
//
// No operation modifies its input. Every function returns a freshly
// allocated Raster, so rasters can be shared between goroutines and handed
// out repeatedly by a RasterCache.
//
// # Formats
//
// Codec.Decode accepts PNG, JPEG, GIF, BMP, TIFF and WebP, sniffed from the
// content. Codec.Encode always produces PNG, which keeps a
// decode/encode round trip lossless including alpha.
//
// # Error Handling
//
// Failures are reported as *Error carrying one of four kinds:
//   - DecodeError: malformed or unrecognized input bytes
//   - UnsupportedFormat: a recognized but unsupported container or colour mode
//   - EncodeError: the PNG output could not be produced
//   - InvalidParameter: an out-of-bounds rect, a non-finite number, or
//     mismatched raster sizes
//
// Parameters with a sensible total fallback (opacity, brightness, contrast,
// blur sigma) are clamped instead of rejected. Use KindOf or errors.Is with
// ErrDecode, ErrUnsupportedFormat, ErrEncode and ErrInvalidParameter to
// branch on the kind.
package imaging
