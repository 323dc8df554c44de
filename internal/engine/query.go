package engine

import (
	"go.uber.org/zap"

	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
)

// Dimensions returns the width and height of the decoded image.
func (e *Engine) Dimensions(data []byte) (width, height int, err error) {
	r, err := e.decode("dimensions", "input", data)
	if err != nil {
		e.logFailure("dimensions", err)
		return 0, 0, err
	}
	return r.Width, r.Height, nil
}

// IsSquareIsh reports whether the image is close enough to square that a
// crop selection is unnecessary.
func (e *Engine) IsSquareIsh(data []byte) (bool, error) {
	w, h, err := e.Dimensions(data)
	if err != nil {
		return false, err
	}
	ok := imaging.IsSquareIsh(w, h, e.tolerance)
	e.logger.Debug("square check",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Float64("tolerance", e.tolerance),
		zap.Bool("square_ish", ok),
	)
	return ok, nil
}

// Inspect decodes the image and describes it.
func (e *Engine) Inspect(data []byte) (*imaging.Info, error) {
	r, err := e.decode("inspect", "input", data)
	if err != nil {
		e.logFailure("inspect", err)
		return nil, err
	}
	return imaging.Describe(r, imaging.DetectFormat(data), e.tolerance), nil
}
