// Package server implements the MCP (Model Context Protocol) server for image transform tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the transforms of
// package pipeline through the MCP protocol.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Resampling:
//   - image_resize: Fit inside a box, aspect preserved
//   - image_resize_by_scale: Box-filter downscale by a factor in (0, 1]
//
// Geometry:
//   - image_rotate: Quarter-turn rotation
//   - image_flip: Horizontal and/or vertical mirror
//
// Color Operations:
//   - image_convert: Change content type
//   - image_lightness: Average brightness
//   - image_white_to_transparent: Key out near-white pixels
//   - image_sample_color: Get color at one or more pixels
//
// Region Operations:
//   - image_crop: Extract rectangular region
//   - image_crop_quadrant: Extract named region (top-left, center, etc.)
//
// # Inputs and Outputs
//
// Every tool but image_load and image_dimensions reads its source from path
// or, when path is empty, from base64 data in image_base64. Transform tools
// return width, height, content_type and the encoded image as image_base64;
// when output_path is given the image is written there instead.
//
// The output content type defaults to the source's own (sniffed from its
// bytes). JPEG output is composited onto the configured background color.
//
// # Image Caching
//
// Images read by path are decoded once and cached for the lifetime of the
// server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(pipeline.New(settings))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
