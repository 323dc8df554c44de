package imaging

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so hosts can react without parsing messages.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this package.
	KindUnknown Kind = iota

	// DecodeError means the input bytes are malformed or not an image at all.
	DecodeError

	// UnsupportedFormat means the container was recognized but cannot be
	// decoded (unknown codec, colour mode, or an image over the pixel limit).
	UnsupportedFormat

	// EncodeError means the output PNG could not be produced.
	EncodeError

	// InvalidParameter means a caller-supplied value cannot be made safe by
	// clamping: out-of-bounds rectangles, non-finite numbers, size mismatches.
	InvalidParameter
)

// String returns the human-readable kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case DecodeError:
		return "decode error"
	case UnsupportedFormat:
		return "unsupported format"
	case EncodeError:
		return "encode error"
	case InvalidParameter:
		return "invalid parameter"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every raster operation in this package.
//
// Op names the stage that failed ("decode", "crop_square", ...). Err carries
// the human-readable message and, where there is one, the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for use with errors.Is. They match any *Error of the same kind.
var (
	ErrDecode            = &Error{Kind: DecodeError}
	ErrUnsupportedFormat = &Error{Kind: UnsupportedFormat}
	ErrEncode            = &Error{Kind: EncodeError}
	ErrInvalidParameter  = &Error{Kind: InvalidParameter}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the bare sentinels above by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// newError builds an *Error. When cause is non-nil the message is attached to
// it with errors.Wrapf so the original error stays reachable via Unwrap.
func newError(kind Kind, op string, cause error, format string, args ...interface{}) *Error {
	var err error
	if cause != nil {
		err = errors.Wrapf(cause, format, args...)
	} else {
		err = errors.Errorf(format, args...)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error of the given kind for callers outside this package.
func Errorf(kind Kind, op, format string, args ...interface{}) *Error {
	return newError(kind, op, nil, format, args...)
}

// KindOf reports the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Annotate prefixes the message of err with context while keeping its kind.
// Errors of other types are wrapped and returned as-is.
func Annotate(err error, context string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return errors.Wrap(err, context)
	}
	return &Error{Kind: e.Kind, Op: e.Op, Err: errors.Wrap(e.Err, context)}
}
