package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ironsheep/pixel-tools-mcp/internal/engine"
)

var (
	red  = color.NRGBA{255, 0, 0, 255}
	blue = color.NRGBA{0, 0, 255, 255}
)

// createTestPNG returns a solid width x height PNG.
func createTestPNG(t *testing.T, width, height int, c color.NRGBA) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// createTestImageFile writes a solid PNG into the test's temp dir and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.NRGBA) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.png")
	require.NoError(t, os.WriteFile(path, createTestPNG(t, width, height, c), 0o644))
	return path
}

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	require.NoError(t, err)

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	require.NotNil(t, resp)
	return resp
}

// resultText unmarshals the text content of a successful tool call into v.
func resultText(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	content, ok := result["content"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	text, ok := content[0]["text"].(string)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(text), v))
}

func imageOf(t *testing.T, resp *MCPResponse) (*ImageResult, image.Image) {
	t.Helper()
	var res ImageResult
	resultText(t, resp, &res)
	assert.Equal(t, "image/png", res.MimeType)

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return &res, img
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func errorData(t *testing.T, resp *MCPResponse) map[string]interface{} {
	t.Helper()
	require.NotNil(t, resp.Error)
	data, ok := resp.Error.Data.(map[string]interface{})
	require.True(t, ok, "error data should be a map, got %T", resp.Error.Data)
	return data
}

func TestToolsCall_GrayscaleFromPath(t *testing.T) {
	s := New(nil, nil)
	path := createTestImageFile(t, 4, 3, red)

	res, img := imageOf(t, callTool(t, s, "image_grayscale", map[string]interface{}{"path": path}))
	assert.Equal(t, 4, res.Width)
	assert.Equal(t, 3, res.Height)
	assert.Empty(t, res.OutputPath)
	assert.Equal(t, color.NRGBA{76, 76, 76, 255}, pixel(img, 2, 1))
}

func TestToolsCall_InvertFromDataURL(t *testing.T) {
	s := New(nil, nil)
	arg := "data:image/png;base64," + b64(createTestPNG(t, 2, 2, red))

	_, img := imageOf(t, callTool(t, s, "image_invert", map[string]interface{}{"image_base64": arg}))
	assert.Equal(t, color.NRGBA{0, 255, 255, 255}, pixel(img, 0, 0))
}

func TestToolsCall_UnpaddedBase64(t *testing.T) {
	s := New(nil, nil)
	arg := base64.RawStdEncoding.EncodeToString(createTestPNG(t, 3, 2, red))

	res, _ := imageOf(t, callTool(t, s, "image_sepia", map[string]interface{}{"image_base64": arg}))
	assert.Equal(t, 3, res.Width)
}

func TestToolsCall_ParameterisedFilters(t *testing.T) {
	s := New(nil, nil)
	src := b64(createTestPNG(t, 2, 2, color.NRGBA{100, 100, 100, 255}))

	_, img := imageOf(t, callTool(t, s, "image_brighten", map[string]interface{}{"image_base64": src, "delta": 50}))
	assert.Equal(t, color.NRGBA{150, 150, 150, 255}, pixel(img, 1, 1))

	// 128 + (100-128)*2 = 72
	_, img = imageOf(t, callTool(t, s, "image_contrast", map[string]interface{}{"image_base64": src, "factor": 1.0}))
	assert.Equal(t, color.NRGBA{72, 72, 72, 255}, pixel(img, 0, 0))

	_, img = imageOf(t, callTool(t, s, "image_blur", map[string]interface{}{"image_base64": src, "sigma": 0}))
	assert.Equal(t, color.NRGBA{100, 100, 100, 255}, pixel(img, 0, 0))
}

func TestToolsCall_MissingRequiredNumbers(t *testing.T) {
	s := New(nil, nil)
	src := b64(createTestPNG(t, 2, 2, red))

	for _, name := range []string{"image_brighten", "image_contrast", "image_blur"} {
		resp := callTool(t, s, name, map[string]interface{}{"image_base64": src})
		require.NotNil(t, resp.Error, name)
		assert.Equal(t, -32602, resp.Error.Code, name)
	}
}

func TestToolsCall_Rotate(t *testing.T) {
	s := New(nil, nil)
	src := b64(createTestPNG(t, 4, 3, red))

	for _, deg := range []int{90, 270, -90} {
		res, _ := imageOf(t, callTool(t, s, "image_rotate", map[string]interface{}{"image_base64": src, "degrees": deg}))
		assert.Equal(t, 3, res.Width, "degrees %d", deg)
		assert.Equal(t, 4, res.Height, "degrees %d", deg)
	}

	res, _ := imageOf(t, callTool(t, s, "image_rotate", map[string]interface{}{"image_base64": src, "degrees": 180}))
	assert.Equal(t, 4, res.Width)

	resp := callTool(t, s, "image_rotate", map[string]interface{}{"image_base64": src, "degrees": 45})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestToolsCall_Flip(t *testing.T) {
	s := New(nil, nil)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, blue)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	src := b64(buf.Bytes())

	_, out := imageOf(t, callTool(t, s, "image_flip", map[string]interface{}{"image_base64": src, "direction": "horizontal"}))
	assert.Equal(t, blue, pixel(out, 0, 0))
	assert.Equal(t, red, pixel(out, 1, 0))

	_, out = imageOf(t, callTool(t, s, "image_flip", map[string]interface{}{"image_base64": src, "direction": "Vertical"}))
	assert.Equal(t, red, pixel(out, 0, 0))

	resp := callTool(t, s, "image_flip", map[string]interface{}{"image_base64": src, "direction": "diagonal"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestToolsCall_CropSquare(t *testing.T) {
	s := New(nil, nil)
	src := b64(createTestPNG(t, 10, 6, red))

	res, _ := imageOf(t, callTool(t, s, "image_crop_square", map[string]interface{}{
		"image_base64": src, "x": 2, "y": 0, "size": 6,
	}))
	assert.Equal(t, 6, res.Width)
	assert.Equal(t, 6, res.Height)

	resp := callTool(t, s, "image_crop_square", map[string]interface{}{
		"image_base64": src, "x": 5, "y": 0, "size": 6,
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
	assert.Equal(t, "InvalidParameter", errorData(t, resp)["kind"])
}

func TestToolsCall_Overlay(t *testing.T) {
	s := New(nil, nil)
	base := b64(createTestPNG(t, 4, 4, red))
	overlay := b64(createTestPNG(t, 4, 4, blue))

	// opacity defaults to 1
	_, img := imageOf(t, callTool(t, s, "image_overlay", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay,
	}))
	assert.Equal(t, blue, pixel(img, 2, 2))

	_, img = imageOf(t, callTool(t, s, "image_overlay", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay, "opacity": 0,
	}))
	assert.Equal(t, red, pixel(img, 2, 2))

	resp := callTool(t, s, "image_overlay", map[string]interface{}{"image_base64": base})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
	assert.Contains(t, errorData(t, resp)["error"], "overlay_path")
}

func TestToolsCall_Combine(t *testing.T) {
	s := New(nil, nil)
	base := b64(createTestPNG(t, 8, 8, red))
	overlay := b64(createTestPNG(t, 8, 8, blue))

	_, img := imageOf(t, callTool(t, s, "image_combine", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay, "axis": "top-bottom",
	}))
	assert.Equal(t, blue, pixel(img, 0, 0))
	assert.Equal(t, red, pixel(img, 0, 7))

	_, img = imageOf(t, callTool(t, s, "image_combine", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay, "axis": "diagonal_tr_bl",
	}))
	assert.Equal(t, blue, pixel(img, 0, 0))
	assert.Equal(t, red, pixel(img, 7, 7))

	_, img = imageOf(t, callTool(t, s, "image_combine", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay, "axis": "square", "x": 2, "y": 2, "size": 4,
	}))
	assert.Equal(t, red, pixel(img, 0, 0))
	assert.Equal(t, blue, pixel(img, 3, 3))
	assert.Equal(t, red, pixel(img, 6, 6))

	resp := callTool(t, s, "image_combine", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay, "axis": "spiral",
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, "InvalidParameter", errorData(t, resp)["kind"])

	resp = callTool(t, s, "image_combine", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay,
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestToolsCall_BlendRegion(t *testing.T) {
	s := New(nil, nil)
	base := b64(createTestPNG(t, 8, 8, red))
	overlay := b64(createTestPNG(t, 8, 8, blue))

	_, img := imageOf(t, callTool(t, s, "image_blend_region", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay, "x": 4, "y": 4, "size": 4,
	}))
	assert.Equal(t, blue, pixel(img, 5, 5))
	assert.Equal(t, red, pixel(img, 3, 3))

	_, img = imageOf(t, callTool(t, s, "image_blend_region", map[string]interface{}{
		"image_base64": base, "overlay_base64": overlay, "x": 4, "y": 4, "size": 4, "opacity": 0.0,
	}))
	assert.Equal(t, red, pixel(img, 5, 5))
}

func TestToolsCall_Queries(t *testing.T) {
	s := New(nil, nil)

	var dims DimensionsResult
	resultText(t, callTool(t, s, "image_dimensions", map[string]interface{}{
		"path": createTestImageFile(t, 7, 5, red),
	}), &dims)
	assert.Equal(t, DimensionsResult{Width: 7, Height: 5}, dims)

	var sq SquareIshResult
	resultText(t, callTool(t, s, "image_is_square_ish", map[string]interface{}{
		"image_base64": b64(createTestPNG(t, 101, 100, red)),
	}), &sq)
	assert.True(t, sq.SquareIsh)

	resultText(t, callTool(t, s, "image_is_square_ish", map[string]interface{}{
		"image_base64": b64(createTestPNG(t, 100, 50, red)),
	}), &sq)
	assert.False(t, sq.SquareIsh)

	var info map[string]interface{}
	resultText(t, callTool(t, s, "image_inspect", map[string]interface{}{
		"image_base64": b64(createTestPNG(t, 4, 2, red)),
	}), &info)
	assert.Equal(t, "png", info["format"])
	assert.Equal(t, float64(4), info["width"])
	assert.Equal(t, false, info["has_alpha"])
	assert.Equal(t, float64(2), info["aspect_ratio"])
}

func TestToolsCall_OutputPath(t *testing.T) {
	s := New(nil, nil)
	out := filepath.Join(t.TempDir(), "out.png")

	var res ImageResult
	resultText(t, callTool(t, s, "image_grayscale", map[string]interface{}{
		"image_base64": b64(createTestPNG(t, 3, 3, red)),
		"output_path":  out,
	}), &res)
	assert.Equal(t, out, res.OutputPath)
	assert.Empty(t, res.ImageBase64)
	assert.Equal(t, 3, res.Width)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Width)
}

func TestToolsCall_InputErrors(t *testing.T) {
	s := New(nil, nil)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
		code int
		kind string
	}{
		{"no image", "image_grayscale", map[string]interface{}{}, -32602, ""},
		{"missing file", "image_grayscale", map[string]interface{}{"path": "/nonexistent/image.png"}, -32602, ""},
		{"bad base64", "image_grayscale", map[string]interface{}{"image_base64": "!!!"}, -32602, ""},
		{"not an image", "image_grayscale", map[string]interface{}{"image_base64": b64([]byte("hello, world"))}, -32000, "DecodeError"},
		{"wrong arg type", "image_brighten", map[string]interface{}{"image_base64": "x", "delta": "lots"}, -32602, ""},
		{"unknown tool", "image_emboss", map[string]interface{}{}, -32602, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)

			data := errorData(t, resp)
			assert.NotEmpty(t, data["request_id"])
			if tt.kind != "" {
				assert.Equal(t, tt.kind, data["kind"])
			}
		})
	}
}

func TestToolsCall_InvalidParams(t *testing.T) {
	s := New(nil, nil)
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`["not", "an", "object"]`),
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestToolsCall_LogsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New(engine.New(), zap.New(core))
	src := b64(createTestPNG(t, 2, 2, red))

	imageOf(t, callTool(t, s, "image_invert", map[string]interface{}{"image_base64": src}))
	resp := callTool(t, s, "image_crop_square", map[string]interface{}{"image_base64": src, "size": 5})

	ok := logs.FilterMessage("tool call").All()
	require.Len(t, ok, 1)
	fields := ok[0].ContextMap()
	assert.Equal(t, "image_invert", fields["tool"])
	_, err := uuid.Parse(fields["request_id"].(string))
	assert.NoError(t, err)

	failed := logs.FilterMessage("tool call failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, errorData(t, resp)["request_id"], failed[0].ContextMap()["request_id"])
}
