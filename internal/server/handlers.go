package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/pixel-tools-mcp/internal/engine"
	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_grayscale", "image_combine").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argError reports tool arguments that are malformed or missing. It maps to
// JSON-RPC -32602 rather than a tool failure.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func argErrorf(format string, args ...interface{}) error {
	return &argError{msg: fmt.Sprintf(format, args...)}
}

// kindNames are the error kinds reported in the data of a failed tool call.
var kindNames = map[imaging.Kind]string{
	imaging.DecodeError:       "DecodeError",
	imaging.UnsupportedFormat: "UnsupportedFormat",
	imaging.EncodeError:       "EncodeError",
	imaging.InvalidParameter:  "InvalidParameter",
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Engine failures return a JSON-RPC error with code -32000 whose data carries
// the error kind; bad arguments return -32602.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	requestID := uuid.NewString()
	log := s.logger.With(
		zap.String("request_id", requestID),
		zap.String("tool", params.Name),
	)

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	elapsed := time.Since(start)
	if err != nil {
		log.Warn("tool call failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return s.toolError(req.ID, requestID, err)
	}
	log.Info("tool call", zap.Duration("elapsed", elapsed))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) toolError(id interface{}, requestID string, err error) *MCPResponse {
	var ae *argError
	if errors.As(err, &ae) {
		return s.errorResponse(id, codeInvalidParams, "Invalid params", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}

	kind, ok := kindNames[imaging.KindOf(err)]
	if !ok {
		kind = "Internal"
	}
	return s.errorResponse(id, codeToolFailed, "Tool execution failed", map[string]interface{}{
		"request_id": requestID,
		"kind":       kind,
		"error":      err.Error(),
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each handler unmarshals its arguments, loads the input image(s), builds an
// engine.Request and formats the engine's Result.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Filters
	case "image_grayscale":
		return s.handleSimple(args, "grayscale")
	case "image_invert":
		return s.handleSimple(args, "invert")
	case "image_sepia":
		return s.handleSimple(args, "sepia")
	case "image_brighten":
		return s.handleImageBrighten(args)
	case "image_contrast":
		return s.handleImageContrast(args)
	case "image_blur":
		return s.handleImageBlur(args)

	// Transforms
	case "image_rotate":
		return s.handleImageRotate(args)
	case "image_flip":
		return s.handleImageFlip(args)
	case "image_crop_square":
		return s.handleImageCropSquare(args)

	// Compositing
	case "image_overlay":
		return s.handleImageOverlay(args)
	case "image_combine":
		return s.handleImageCombine(args)
	case "image_blend_region":
		return s.handleImageBlendRegion(args)

	// Queries
	case "image_is_square_ish":
		return s.handleImageIsSquareIsh(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_inspect":
		return s.handleImageInspect(args)

	default:
		return nil, argErrorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return argErrorf("invalid arguments: %v", err)
	}
	return nil
}

// === Argument types ===

type imageArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
	OutputPath  string `json:"output_path"`
}

func (a imageArgs) load() ([]byte, error) {
	return loadImage(a.Path, a.ImageBase64, "path", "image_base64")
}

type overlayArgs struct {
	OverlayPath   string `json:"overlay_path"`
	OverlayBase64 string `json:"overlay_base64"`
}

func (a overlayArgs) load() ([]byte, error) {
	return loadImage(a.OverlayPath, a.OverlayBase64, "overlay_path", "overlay_base64")
}

type rectArgs struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Size int `json:"size"`
}

// ImageResult is returned by every tool producing an image.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
}

// DimensionsResult is returned by image_dimensions.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SquareIshResult is returned by image_is_square_ish.
type SquareIshResult struct {
	SquareIsh bool `json:"square_ish"`
}

// loadImage reads inline base64 data when present, otherwise the file at path.
func loadImage(path, b64, pathField, b64Field string) ([]byte, error) {
	switch {
	case b64 != "":
		data, err := decodeBase64(b64)
		if err != nil {
			return nil, argErrorf("invalid %s: %v", b64Field, err)
		}
		return data, nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, argErrorf("cannot read %s: %v", pathField, err)
		}
		return data, nil
	default:
		return nil, argErrorf("missing image: set %s or %s", pathField, b64Field)
	}
}

// decodeBase64 accepts padded or unpadded standard base64, optionally
// prefixed with a data URL header such as "data:image/png;base64,".
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return data, err
}

// === Shared execution ===

// runImage executes an image-producing operation. overlay is nil for
// single-image operations.
func (s *Server) runImage(op string, in imageArgs, overlay *overlayArgs, params engine.Params) (interface{}, error) {
	data, err := in.load()
	if err != nil {
		return nil, err
	}
	req := engine.Request{Op: op, Image: data, Params: params}
	if overlay != nil {
		if req.Overlay, err = overlay.load(); err != nil {
			return nil, err
		}
	}

	res, err := s.engine.Process(req)
	if err != nil {
		return nil, err
	}
	return newImageResult(res.Image, in.OutputPath)
}

func newImageResult(data []byte, outputPath string) (*ImageResult, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read result header: %w", err)
	}
	result := &ImageResult{
		Width:    cfg.Width,
		Height:   cfg.Height,
		MimeType: imaging.OutputMimeType,
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		result.OutputPath = outputPath
		return result, nil
	}
	result.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	return result, nil
}

func (s *Server) query(op string, args json.RawMessage) (engine.Result, error) {
	var a imageArgs
	if err := decodeArgs(args, &a); err != nil {
		return engine.Result{}, err
	}
	data, err := a.load()
	if err != nil {
		return engine.Result{}, err
	}
	return s.engine.Process(engine.Request{Op: op, Image: data})
}

// === Filter Handlers ===

func (s *Server) handleSimple(args json.RawMessage, op string) (interface{}, error) {
	var a imageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.runImage(op, a, nil, engine.Params{})
}

type imageBrightenArgs struct {
	imageArgs
	Delta *int `json:"delta"`
}

func (s *Server) handleImageBrighten(args json.RawMessage) (interface{}, error) {
	var a imageBrightenArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Delta == nil {
		return nil, argErrorf("missing delta")
	}
	return s.runImage("brighten", a.imageArgs, nil, engine.Params{Delta: *a.Delta})
}

type imageContrastArgs struct {
	imageArgs
	Factor *float64 `json:"factor"`
}

func (s *Server) handleImageContrast(args json.RawMessage) (interface{}, error) {
	var a imageContrastArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Factor == nil {
		return nil, argErrorf("missing factor")
	}
	return s.runImage("adjust_contrast", a.imageArgs, nil, engine.Params{Factor: *a.Factor})
}

type imageBlurArgs struct {
	imageArgs
	Sigma *float64 `json:"sigma"`
}

func (s *Server) handleImageBlur(args json.RawMessage) (interface{}, error) {
	var a imageBlurArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Sigma == nil {
		return nil, argErrorf("missing sigma")
	}
	return s.runImage("blur", a.imageArgs, nil, engine.Params{Sigma: *a.Sigma})
}

// === Transform Handlers ===

type imageRotateArgs struct {
	imageArgs
	Degrees int `json:"degrees"`
}

func (s *Server) handleImageRotate(args json.RawMessage) (interface{}, error) {
	var a imageRotateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	// -90 is the same as 270
	var op string
	switch (a.Degrees%360 + 360) % 360 {
	case 90:
		op = "rotate90"
	case 180:
		op = "rotate180"
	case 270:
		op = "rotate270"
	default:
		return nil, argErrorf("degrees must be 90, 180 or 270, got %d", a.Degrees)
	}
	return s.runImage(op, a.imageArgs, nil, engine.Params{})
}

type imageFlipArgs struct {
	imageArgs
	Direction string `json:"direction"`
}

func (s *Server) handleImageFlip(args json.RawMessage) (interface{}, error) {
	var a imageFlipArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	var op string
	switch strings.ToLower(strings.TrimSpace(a.Direction)) {
	case "horizontal", "h":
		op = "flip_h"
	case "vertical", "v":
		op = "flip_v"
	default:
		return nil, argErrorf("direction must be horizontal or vertical, got %q", a.Direction)
	}
	return s.runImage(op, a.imageArgs, nil, engine.Params{})
}

type imageCropSquareArgs struct {
	imageArgs
	rectArgs
}

func (s *Server) handleImageCropSquare(args json.RawMessage) (interface{}, error) {
	var a imageCropSquareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.runImage("crop_square", a.imageArgs, nil, engine.Params{X: a.X, Y: a.Y, Size: a.Size})
}

// === Compositing Handlers ===

type imageOverlayArgs struct {
	imageArgs
	overlayArgs
	Opacity *float64 `json:"opacity"`
}

func opacityOrDefault(p *float64) float64 {
	if p == nil {
		return 1.0
	}
	return *p
}

func (s *Server) handleImageOverlay(args json.RawMessage) (interface{}, error) {
	var a imageOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.runImage("overlay_transparent", a.imageArgs, &a.overlayArgs,
		engine.Params{Opacity: opacityOrDefault(a.Opacity)})
}

type imageCombineArgs struct {
	imageArgs
	overlayArgs
	rectArgs
	Axis string `json:"axis"`
}

func (s *Server) handleImageCombine(args json.RawMessage) (interface{}, error) {
	var a imageCombineArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Axis == "" {
		return nil, argErrorf("missing axis")
	}
	kind, err := imaging.ParseAxis(a.Axis)
	if err != nil {
		return nil, err
	}

	op := "combine_" + strings.ReplaceAll(kind.String(), "-", "_")
	if kind == imaging.SquareRegion {
		op = "combine_with_square_region"
	}
	return s.runImage(op, a.imageArgs, &a.overlayArgs, engine.Params{X: a.X, Y: a.Y, Size: a.Size})
}

type imageBlendRegionArgs struct {
	imageArgs
	overlayArgs
	rectArgs
	Opacity *float64 `json:"opacity"`
}

func (s *Server) handleImageBlendRegion(args json.RawMessage) (interface{}, error) {
	var a imageBlendRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.runImage("blend_with_square_region", a.imageArgs, &a.overlayArgs, engine.Params{
		X:       a.X,
		Y:       a.Y,
		Size:    a.Size,
		Opacity: opacityOrDefault(a.Opacity),
	})
}

// === Query Handlers ===

func (s *Server) handleImageIsSquareIsh(args json.RawMessage) (interface{}, error) {
	res, err := s.query("is_square_ish", args)
	if err != nil {
		return nil, err
	}
	return &SquareIshResult{SquareIsh: res.SquareIsh}, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	res, err := s.query("dimensions", args)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{Width: res.Width, Height: res.Height}, nil
}

func (s *Server) handleImageInspect(args json.RawMessage) (interface{}, error) {
	res, err := s.query("inspect", args)
	if err != nil {
		return nil, err
	}
	return res.Info, nil
}
