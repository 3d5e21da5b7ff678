package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// schema builds an object schema from the shared source and output
// properties plus the tool's own.
func schema(withOutput bool, props map[string]interface{}, required ...string) map[string]interface{} {
	all := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded PNG, JPEG or GIF data, used when path is not given",
		},
	}
	if withOutput {
		all["content_type"] = map[string]interface{}{
			"type":        "string",
			"description": "Output type: image/jpeg, image/png or image/gif. Defaults to the source type. JPEG output is composited onto the background color.",
			"enum":        []string{"image/jpeg", "image/png", "image/gif"},
		}
		all["quality"] = map[string]interface{}{
			"type":        "integer",
			"description": "JPEG quality 1-100. Defaults to the configured quality (100)",
		}
		all["output_path"] = map[string]interface{}{
			"type":        "string",
			"description": "Optional file to write the result to instead of returning base64",
		}
	}
	for k, v := range props {
		all[k] = v
	}
	s := map[string]interface{}{
		"type":       "object",
		"properties": all,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, content type (sniffed from the file contents) and whether it carries transparency. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Resampling
		{
			Name:        "image_resize",
			Description: "Resize an image to fit inside a box, keeping its aspect ratio. Give width and/or height (a missing one is inferred), or max_size for the longer side. Images are only enlarged when upscale is true.",
			InputSchema: schema(true, map[string]interface{}{
				"width":    intProp("Target width in pixels; 0 infers it from height"),
				"height":   intProp("Target height in pixels; 0 infers it from width"),
				"max_size": intProp("Longest side in pixels; takes precedence over width and height"),
				"upscale": map[string]interface{}{
					"type":        "boolean",
					"description": "Allow enlarging images smaller than the box. Default false",
					"default":     false,
				},
			}),
		},
		{
			Name:        "image_resize_by_scale",
			Description: "Shrink an image by a factor in (0, 1] with an area-weighted box filter. Output size is floor(width*scale) x floor(height*scale).",
			InputSchema: schema(true, map[string]interface{}{
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Scale factor, greater than 0 and at most 1",
				},
			}, "scale"),
		},

		// Geometry
		{
			Name:        "image_rotate",
			Description: "Rotate an image by a quarter turn. The result has width and height swapped.",
			InputSchema: schema(true, map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "integer",
					"description": "Positive for clockwise, negative for counter-clockwise, 0 for no rotation. Default 1",
					"default":     1,
				},
			}),
		},
		{
			Name:        "image_flip",
			Description: "Mirror an image. flip mirrors left to right, flop mirrors top to bottom; both may be set.",
			InputSchema: schema(true, map[string]interface{}{
				"flip": map[string]interface{}{
					"type":        "boolean",
					"description": "Mirror horizontally",
				},
				"flop": map[string]interface{}{
					"type":        "boolean",
					"description": "Mirror vertically",
				},
			}),
		},

		// Color Operations
		{
			Name:        "image_convert",
			Description: "Convert an image to another content type. Converting to JPEG composites transparent areas onto the background color.",
			InputSchema: schema(true, nil, "content_type"),
		},
		{
			Name:        "image_lightness",
			Description: "Get the average brightness of an image, 0 (black) to 255 (white).",
			InputSchema: schema(false, nil),
		},
		{
			Name:        "image_white_to_transparent",
			Description: "Make near-white pixels fully transparent. A pixel is keyed when red, green and blue are all at least 255-tolerance. The result is PNG.",
			InputSchema: schema(true, map[string]interface{}{
				"tolerance": map[string]interface{}{
					"type":        "integer",
					"description": "0-255; 0 keys out exact white only. Default 0",
					"default":     0,
				},
			}),
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color at a pixel as hex, RGB, RGBA and HSL. Pass points to sample several labeled pixels at once.",
			InputSchema: schema(false, map[string]interface{}{
				"x": intProp("X coordinate (0-based, from left)"),
				"y": intProp("Y coordinate (0-based, from top)"),
				"points": map[string]interface{}{
					"type":        "array",
					"description": "Points to sample instead of x and y",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x":     map[string]interface{}{"type": "integer"},
							"y":     map[string]interface{}{"type": "integer"},
							"label": map[string]interface{}{"type": "string"},
						},
						"required": []string{"x", "y"},
					},
				},
			}),
		},

		// Region Operations
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image.",
			InputSchema: schema(true, map[string]interface{}{
				"x1": intProp("Left edge X coordinate (0-based)"),
				"y1": intProp("Top edge Y coordinate (0-based)"),
				"x2": intProp("Right edge X coordinate (exclusive)"),
				"y2": intProp("Bottom edge Y coordinate (exclusive)"),
			}, "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "image_crop_quadrant",
			Description: "Crop a named region of an image.",
			InputSchema: schema(true, map[string]interface{}{
				"region": map[string]interface{}{
					"type":        "string",
					"description": "Region to extract",
					"enum": []string{
						"top-left", "top-right", "bottom-left", "bottom-right",
						"top-half", "bottom-half", "left-half", "right-half", "center",
					},
				},
			}, "region"),
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
