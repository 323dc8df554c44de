package server

import (
	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Accepted values of the enum arguments.
var (
	rotateDegrees  = []int{90, 180, 270}
	flipDirections = []string{"horizontal", "vertical"}
)

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

// imageProps returns the properties shared by every tool: the input image
// given as a file path or inline base64, and an optional output file.
func imageProps(withOutput bool) map[string]interface{} {
	props := map[string]interface{}{
		"path":         prop("string", "Absolute path to the input image file"),
		"image_base64": prop("string", "Input image as base64 (a data: URL prefix is accepted). Used instead of path"),
	}
	if withOutput {
		props["output_path"] = prop("string", "Optional file to write the PNG result to. When set, image_base64 is omitted from the result")
	}
	return props
}

func overlayProps(props map[string]interface{}) map[string]interface{} {
	props["overlay_path"] = prop("string", "Absolute path to the overlay image file")
	props["overlay_base64"] = prop("string", "Overlay image as base64. Used instead of overlay_path")
	return props
}

func rectProps(props map[string]interface{}) map[string]interface{} {
	props["x"] = prop("integer", "Left edge of the square (0-based)")
	props["y"] = prop("integer", "Top edge of the square (0-based)")
	props["size"] = prop("integer", "Side length of the square in pixels")
	return props
}

func opacityProp(props map[string]interface{}) map[string]interface{} {
	p := prop("number", "Overlay opacity from 0 to 1; values outside are clamped. Default 1.0")
	p["default"] = 1.0
	props["opacity"] = p
	return props
}

func schema(props map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Filters
		{
			Name:        "image_grayscale",
			Description: "Convert an image to grayscale using BT.601 luma. Alpha is preserved. Returns a PNG.",
			InputSchema: schema(imageProps(true)),
		},
		{
			Name:        "image_invert",
			Description: "Invert the RGB channels of an image (255 - c). Alpha is preserved. Returns a PNG.",
			InputSchema: schema(imageProps(true)),
		},
		{
			Name:        "image_sepia",
			Description: "Apply the classic sepia tone matrix to an image. Returns a PNG.",
			InputSchema: schema(imageProps(true)),
		},
		{
			Name:        "image_brighten",
			Description: "Add a constant to every RGB channel, clamped to 0-255. Returns a PNG.",
			InputSchema: schema(func() map[string]interface{} {
				p := imageProps(true)
				p["delta"] = prop("integer", "Amount added to each channel, -255 to 255")
				return p
			}(), "delta"),
		},
		{
			Name:        "image_contrast",
			Description: "Scale each RGB channel around mid-gray: 128 + (c-128)*(1+factor). Returns a PNG.",
			InputSchema: schema(func() map[string]interface{} {
				p := imageProps(true)
				p["factor"] = prop("number", "Contrast factor; -1 gives flat gray, 0 leaves the image unchanged, positive values increase contrast (max 100)")
				return p
			}(), "factor"),
		},
		{
			Name:        "image_blur",
			Description: "Apply a Gaussian blur. A sigma of 0 or less returns the image unchanged. Returns a PNG.",
			InputSchema: schema(func() map[string]interface{} {
				p := imageProps(true)
				p["sigma"] = prop("number", "Standard deviation of the Gaussian in pixels (max 64)")
				return p
			}(), "sigma"),
		},

		// Transforms
		{
			Name:        "image_rotate",
			Description: "Rotate an image clockwise by 90, 180 or 270 degrees. Returns a PNG.",
			InputSchema: schema(func() map[string]interface{} {
				p := imageProps(true)
				d := prop("integer", "Clockwise rotation in degrees")
				d["enum"] = rotateDegrees
				p["degrees"] = d
				return p
			}(), "degrees"),
		},
		{
			Name:        "image_flip",
			Description: "Mirror an image horizontally (left-right) or vertically (top-bottom). Returns a PNG.",
			InputSchema: schema(func() map[string]interface{} {
				p := imageProps(true)
				d := prop("string", "Flip direction")
				d["enum"] = flipDirections
				p["direction"] = d
				return p
			}(), "direction"),
		},
		{
			Name:        "image_crop_square",
			Description: "Extract a square region. The square must lie entirely inside the image. Returns a PNG.",
			InputSchema: schema(rectProps(imageProps(true)), "x", "y", "size"),
		},

		// Compositing
		{
			Name:        "image_overlay",
			Description: "Composite an overlay over the image (Porter-Duff over). The overlay is scaled to cover the image and center-cropped first. Returns a PNG the size of the input image.",
			InputSchema: schema(opacityProp(overlayProps(imageProps(true)))),
		},
		{
			Name: "image_combine",
			Description: "Combine the image with an overlay along an axis. For split axes the overlay is scaled to cover the image and takes the named part " +
				"(e.g. top-bottom puts the overlay on the top half). Pixels exactly on a diagonal stay with the image. " +
				"For axis square, the overlay is scaled to the square and replaces that region.",
			InputSchema: schema(func() map[string]interface{} {
				p := rectProps(overlayProps(imageProps(true)))
				a := prop("string", "Combination axis. x, y and size are only used by square")
				a["enum"] = imaging.AxisNames()
				p["axis"] = a
				return p
			}(), "axis"),
		},
		{
			Name:        "image_blend_region",
			Description: "Scale the overlay to a square region and alpha-blend it over that region of the image. Pixels outside the region are unchanged. Returns a PNG.",
			InputSchema: schema(opacityProp(rectProps(overlayProps(imageProps(true)))), "x", "y", "size"),
		},

		// Queries
		{
			Name:        "image_is_square_ish",
			Description: "Report whether the image aspect ratio is within tolerance of 1:1, i.e. no square crop is needed.",
			InputSchema: schema(imageProps(false)),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image.",
			InputSchema: schema(imageProps(false)),
		},
		{
			Name:        "image_inspect",
			Description: "Describe an image: dimensions, detected format, aspect ratio, whether it has transparency, and its average color.",
			InputSchema: schema(imageProps(false)),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
