package engine

import (
	"sort"

	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
)

// Params carries the numeric and named arguments of a Request. Each
// operation reads only the fields it needs.
type Params struct {
	Delta   int     `json:"delta,omitempty" yaml:"delta"`
	Factor  float64 `json:"factor,omitempty" yaml:"factor"`
	Sigma   float64 `json:"sigma,omitempty" yaml:"sigma"`
	Opacity float64 `json:"opacity,omitempty" yaml:"opacity"`
	X       int     `json:"x,omitempty" yaml:"x"`
	Y       int     `json:"y,omitempty" yaml:"y"`
	Size    int     `json:"size,omitempty" yaml:"size"`
}

// Request names an operation and its inputs.
type Request struct {
	Op      string
	Image   []byte
	Overlay []byte
	Params  Params
}

// Result holds the output of Process. Image is set by pixel operations,
// the other fields by the query operations.
type Result struct {
	Image     []byte
	Width     int
	Height    int
	SquareIsh bool
	Info      *imaging.Info
}

type operation struct {
	twoImages bool
	run       func(e *Engine, req Request) (Result, error)
}

func image1(fn func(e *Engine, data []byte, p Params) ([]byte, error)) operation {
	return operation{run: func(e *Engine, req Request) (Result, error) {
		out, err := fn(e, req.Image, req.Params)
		return Result{Image: out}, err
	}}
}

func image2(fn func(e *Engine, base, overlay []byte, p Params) ([]byte, error)) operation {
	return operation{twoImages: true, run: func(e *Engine, req Request) (Result, error) {
		out, err := fn(e, req.Image, req.Overlay, req.Params)
		return Result{Image: out}, err
	}}
}

var operations = map[string]operation{
	"grayscale": image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.Grayscale(d) }),
	"invert":    image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.Invert(d) }),
	"sepia":     image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.Sepia(d) }),
	"brighten":  image1(func(e *Engine, d []byte, p Params) ([]byte, error) { return e.Brighten(d, p.Delta) }),
	"adjust_contrast": image1(func(e *Engine, d []byte, p Params) ([]byte, error) {
		return e.AdjustContrast(d, p.Factor)
	}),
	"blur":      image1(func(e *Engine, d []byte, p Params) ([]byte, error) { return e.Blur(d, p.Sigma) }),
	"rotate90":  image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.Rotate90(d) }),
	"rotate180": image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.Rotate180(d) }),
	"rotate270": image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.Rotate270(d) }),
	"flip_h":    image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.FlipH(d) }),
	"flip_v":    image1(func(e *Engine, d []byte, _ Params) ([]byte, error) { return e.FlipV(d) }),
	"crop_square": image1(func(e *Engine, d []byte, p Params) ([]byte, error) {
		return e.CropSquare(d, p.X, p.Y, p.Size)
	}),

	"overlay_transparent": image2(func(e *Engine, b, o []byte, p Params) ([]byte, error) {
		return e.OverlayTransparent(b, o, p.Opacity)
	}),
	"combine_top_bottom": image2(func(e *Engine, b, o []byte, _ Params) ([]byte, error) {
		return e.CombineTopBottom(b, o)
	}),
	"combine_bottom_top": image2(func(e *Engine, b, o []byte, _ Params) ([]byte, error) {
		return e.CombineBottomTop(b, o)
	}),
	"combine_left_right": image2(func(e *Engine, b, o []byte, _ Params) ([]byte, error) {
		return e.CombineLeftRight(b, o)
	}),
	"combine_right_left": image2(func(e *Engine, b, o []byte, _ Params) ([]byte, error) {
		return e.CombineRightLeft(b, o)
	}),
	"combine_diagonal_tl_br": image2(func(e *Engine, b, o []byte, _ Params) ([]byte, error) {
		return e.CombineDiagonalTLBR(b, o)
	}),
	"combine_diagonal_tr_bl": image2(func(e *Engine, b, o []byte, _ Params) ([]byte, error) {
		return e.CombineDiagonalTRBL(b, o)
	}),
	"combine_with_square_region": image2(func(e *Engine, b, o []byte, p Params) ([]byte, error) {
		return e.CombineWithSquareRegion(b, o, p.X, p.Y, p.Size)
	}),
	"blend_with_square_region": image2(func(e *Engine, b, o []byte, p Params) ([]byte, error) {
		return e.BlendWithSquareRegion(b, o, p.X, p.Y, p.Size, p.Opacity)
	}),

	"dimensions": {run: func(e *Engine, req Request) (Result, error) {
		w, h, err := e.Dimensions(req.Image)
		return Result{Width: w, Height: h}, err
	}},
	"is_square_ish": {run: func(e *Engine, req Request) (Result, error) {
		ok, err := e.IsSquareIsh(req.Image)
		return Result{SquareIsh: ok}, err
	}},
	"inspect": {run: func(e *Engine, req Request) (Result, error) {
		info, err := e.Inspect(req.Image)
		if err != nil {
			return Result{}, err
		}
		return Result{Width: info.Width, Height: info.Height, SquareIsh: info.SquareIsh, Info: info}, nil
	}},
}

// Operations lists the operation names accepted by Process, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NeedsOverlay reports whether op takes a second image.
func NeedsOverlay(op string) bool {
	return operations[op].twoImages
}

// Process runs the operation named by req.Op.
func (e *Engine) Process(req Request) (Result, error) {
	op, ok := operations[req.Op]
	if !ok {
		return Result{}, imaging.Errorf(imaging.InvalidParameter, "process", "unknown operation %q", req.Op)
	}
	if op.twoImages && len(req.Overlay) == 0 {
		return Result{}, imaging.Errorf(imaging.InvalidParameter, req.Op, "operation needs an overlay image")
	}
	return op.run(e, req)
}
