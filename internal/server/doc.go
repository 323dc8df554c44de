// Package server implements the MCP (Model Context Protocol) server for the
// pixel-processing engine.
//
// This package provides a JSON-RPC 2.0 server that exposes every engine
// operation as an MCP tool. Images cross the protocol boundary as file paths
// or base64 strings; the engine itself only ever sees raw bytes.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Filters:
//   - image_grayscale, image_invert, image_sepia
//   - image_brighten (delta), image_contrast (factor), image_blur (sigma)
//
// Transforms:
//   - image_rotate: 90, 180 or 270 degrees clockwise
//   - image_flip: horizontal or vertical
//   - image_crop_square: extract an in-bounds square
//
// Compositing:
//   - image_overlay: alpha-composite an overlay at an opacity
//   - image_combine: split the canvas between image and overlay along an axis
//     (top-bottom, bottom-top, left-right, right-left, diagonal-tl-br,
//     diagonal-tr-bl) or replace a square region
//   - image_blend_region: alpha-composite an overlay into a square region
//
// Queries:
//   - image_is_square_ish, image_dimensions, image_inspect
//
// Every tool takes the input image as "path" or "image_base64"; compositing
// tools take the second image as "overlay_path" or "overlay_base64". Image
// results carry width, height, mime_type and either image_base64 or, when
// "output_path" was given, the path written.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 for engine failures, -32602 for malformed or missing arguments
//   - message: Human-readable error description
//   - data: the request id, the error string and, for engine failures, the
//     error kind (DecodeError, UnsupportedFormat, EncodeError, InvalidParameter)
//
// Each tool call is logged with a generated request id, which is also
// returned in the error data so failures can be matched to log lines.
//
// # Usage
//
//	srv := server.New(engine.New(), logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
