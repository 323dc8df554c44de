// Package engine exposes the stateless pixel-processing API.
//
// Every method takes encoded image bytes, decodes them, runs one operation
// and returns PNG bytes (or a value for the query methods). Nothing is kept
// between calls: two calls with the same arguments always produce the same
// result, and calls may run concurrently.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
)

// Engine runs image operations. It is immutable after New and safe for
// concurrent use.
type Engine struct {
	codec     *imaging.Codec
	decoder   imaging.Decoder
	filter    imaging.ResampleFilter
	tolerance float64
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCodecOptions replaces the default codec options.
func WithCodecOptions(opts imaging.CodecOptions) Option {
	return func(e *Engine) {
		e.codec = imaging.NewCodec(opts)
	}
}

// WithDecoder routes all decoding through d, typically a RasterCache
// wrapping the engine's codec.
func WithDecoder(d imaging.Decoder) Option {
	return func(e *Engine) {
		e.decoder = d
	}
}

// WithResampleFilter sets the filter used to cover-resize overlays.
func WithResampleFilter(f imaging.ResampleFilter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// WithSquareTolerance sets the aspect-ratio tolerance of IsSquareIsh.
func WithSquareTolerance(tol float64) Option {
	return func(e *Engine) {
		e.tolerance = tol
	}
}

// WithLogger sets the logger used for per-operation debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine. Without options it decodes with the default codec
// options, resizes with Lanczos and logs nothing.
func New(opts ...Option) *Engine {
	e := &Engine{
		codec:     imaging.NewCodec(imaging.DefaultCodecOptions()),
		filter:    imaging.DefaultResampleFilter,
		tolerance: imaging.DefaultSquareTolerance,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.decoder == nil {
		e.decoder = e.codec
	}
	return e
}

// Codec returns the codec used for encoding (and decoding, unless a
// separate Decoder was configured).
func (e *Engine) Codec() *imaging.Codec {
	return e.codec
}

func (e *Engine) decode(op, role string, data []byte) (*imaging.Raster, error) {
	r, err := e.decoder.Decode(data)
	if err != nil {
		return nil, imaging.Annotate(err, op+": "+role+" image")
	}
	return r, nil
}

func (e *Engine) encode(op string, r *imaging.Raster) ([]byte, error) {
	out, err := e.codec.Encode(r)
	if err != nil {
		return nil, imaging.Annotate(err, op)
	}
	return out, nil
}

// apply runs decode, fn, encode for a single-image operation.
func (e *Engine) apply(op string, data []byte, fn func(*imaging.Raster) (*imaging.Raster, error)) ([]byte, error) {
	start := time.Now()

	src, err := e.decode(op, "input", data)
	if err != nil {
		e.logFailure(op, err)
		return nil, err
	}
	dst, err := fn(src)
	if err != nil {
		e.logFailure(op, err)
		return nil, err
	}
	out, err := e.encode(op, dst)
	if err != nil {
		e.logFailure(op, err)
		return nil, err
	}

	e.logger.Debug("operation complete",
		zap.String("op", op),
		zap.Int("in_width", src.Width),
		zap.Int("in_height", src.Height),
		zap.Int("out_width", dst.Width),
		zap.Int("out_height", dst.Height),
		zap.Int("out_bytes", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// apply2 is apply for two-image operations.
func (e *Engine) apply2(op string, baseData, overlayData []byte, fn func(base, overlay *imaging.Raster) (*imaging.Raster, error)) ([]byte, error) {
	return e.apply(op, baseData, func(base *imaging.Raster) (*imaging.Raster, error) {
		overlay, err := e.decode(op, "overlay", overlayData)
		if err != nil {
			return nil, err
		}
		return fn(base, overlay)
	})
}

func (e *Engine) logFailure(op string, err error) {
	e.logger.Debug("operation failed",
		zap.String("op", op),
		zap.Stringer("kind", imaging.KindOf(err)),
		zap.Error(err),
	)
}
