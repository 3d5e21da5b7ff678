package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-transform-mcp/internal/imaging"
	"github.com/ironsheep/image-transform-mcp/internal/pipeline"
	"github.com/ironsheep/image-transform-mcp/internal/raster"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_resize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads the source image from the cache or decodes it from base64
//  4. Runs the pipeline operation
//  5. Encodes the result, or writes it to output_path
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Resampling
	case "image_resize":
		return s.handleImageResize(args)
	case "image_resize_by_scale":
		return s.handleImageResizeByScale(args)

	// Geometry
	case "image_rotate":
		return s.handleImageRotate(args)
	case "image_flip":
		return s.handleImageFlip(args)

	// Color Operations
	case "image_convert":
		return s.handleImageConvert(args)
	case "image_lightness":
		return s.handleImageLightness(args)
	case "image_white_to_transparent":
		return s.handleImageWhiteToTransparent(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Region Operations
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_crop_quadrant":
		return s.handleImageCropQuadrant(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

// sourceArgs names the input image: a file path or inline base64 data.
type sourceArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

// outputArgs controls how a transformed image is rendered and returned.
type outputArgs struct {
	ContentType string `json:"content_type"`
	Quality     int    `json:"quality"`
	OutputPath  string `json:"output_path"`
}

// load returns the source image. Files go through the cache; inline data is
// decoded for this call only.
func (s *Server) load(a sourceArgs) (*pipeline.Image, error) {
	switch {
	case a.Path != "":
		return s.cache.Load(a.Path)
	case a.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(a.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("invalid image_base64: %w", err)
		}
		return s.pipeline.DecodeBytes(data)
	default:
		return nil, fmt.Errorf("either path or image_base64 is required")
	}
}

func (o outputArgs) options() (pipeline.Options, error) {
	var opts pipeline.Options
	if o.ContentType != "" {
		ct, err := raster.ParseContentType(o.ContentType)
		if err != nil {
			return opts, err
		}
		opts.ContentType = ct
	}
	opts.Quality = o.Quality
	return opts, nil
}

// emit encodes res as base64, or writes it to o.OutputPath when set.
func (o outputArgs) emit(res *pipeline.Result) (interface{}, error) {
	if o.OutputPath != "" {
		return pipeline.WriteFile(o.OutputPath, res)
	}
	return pipeline.EncodeBase64(res)
}

// transform runs the common load, options, operate and emit sequence.
func (s *Server) transform(src sourceArgs, out outputArgs, op func(*pipeline.Image, pipeline.Options) (*pipeline.Result, error)) (interface{}, error) {
	img, err := s.load(src)
	if err != nil {
		return nil, err
	}
	opts, err := out.options()
	if err != nil {
		return nil, err
	}
	res, err := op(img, opts)
	if err != nil {
		return nil, err
	}
	return out.emit(res)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return pipeline.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return pipeline.GetDimensions(s.cache, a.Path)
}

// === Resampling Handlers ===

type imageResizeArgs struct {
	sourceArgs
	outputArgs
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	MaxSize int  `json:"max_size"`
	Upscale bool `json:"upscale"`
}

func (s *Server) handleImageResize(args json.RawMessage) (interface{}, error) {
	var a imageResizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		o.Upscale = a.Upscale
		if a.MaxSize > 0 {
			return s.pipeline.FitWithin(img, a.MaxSize, o)
		}
		return s.pipeline.Resize(img, imaging.Size{Width: a.Width, Height: a.Height}, o)
	})
}

type imageResizeByScaleArgs struct {
	sourceArgs
	outputArgs
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageResizeByScale(args json.RawMessage) (interface{}, error) {
	var a imageResizeByScaleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		return s.pipeline.ResizeByScale(img, a.Scale, o)
	})
}

// === Geometry Handlers ===

type imageRotateArgs struct {
	sourceArgs
	outputArgs
	Direction *int `json:"direction"`
}

func (s *Server) handleImageRotate(args json.RawMessage) (interface{}, error) {
	var a imageRotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	direction := 1
	if a.Direction != nil {
		direction = *a.Direction
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		return s.pipeline.Rotate(img, direction, o)
	})
}

type imageFlipArgs struct {
	sourceArgs
	outputArgs
	Flip bool `json:"flip"`
	Flop bool `json:"flop"`
}

func (s *Server) handleImageFlip(args json.RawMessage) (interface{}, error) {
	var a imageFlipArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !a.Flip && !a.Flop {
		return nil, fmt.Errorf("at least one of flip or flop must be true")
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		return s.pipeline.FlipFlop(img, a.Flip, a.Flop, o)
	})
}

// === Color Operation Handlers ===

type imageConvertArgs struct {
	sourceArgs
	outputArgs
}

func (s *Server) handleImageConvert(args json.RawMessage) (interface{}, error) {
	var a imageConvertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ContentType == "" {
		return nil, fmt.Errorf("content_type is required")
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		return s.pipeline.ConvertType(img, o.ContentType, o)
	})
}

// LightnessResult is the result of image_lightness.
type LightnessResult struct {
	Lightness int `json:"lightness"`
}

func (s *Server) handleImageLightness(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a)
	if err != nil {
		return nil, err
	}
	l, err := s.pipeline.Lightness(img)
	if err != nil {
		return nil, err
	}
	return &LightnessResult{Lightness: l}, nil
}

type imageWhiteToTransparentArgs struct {
	sourceArgs
	outputArgs
	Tolerance int `json:"tolerance"`
}

func (s *Server) handleImageWhiteToTransparent(args json.RawMessage) (interface{}, error) {
	var a imageWhiteToTransparentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		return s.pipeline.WhiteToTransparent(img, a.Tolerance, o)
	})
}

type imageSampleColorArgs struct {
	sourceArgs
	X      int `json:"x"`
	Y      int `json:"y"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return s.pipeline.SampleColor(img, a.X, a.Y)
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return s.pipeline.SampleColors(img, points)
}

// === Region Operation Handlers ===

type imageCropArgs struct {
	sourceArgs
	outputArgs
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		return s.pipeline.Crop(img, a.X1, a.Y1, a.X2, a.Y2, o)
	})
}

type imageCropQuadrantArgs struct {
	sourceArgs
	outputArgs
	Region string `json:"region"`
}

func (s *Server) handleImageCropQuadrant(args json.RawMessage) (interface{}, error) {
	var a imageCropQuadrantArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.transform(a.sourceArgs, a.outputArgs, func(img *pipeline.Image, o pipeline.Options) (*pipeline.Result, error) {
		return s.pipeline.CropQuadrant(img, a.Region, o)
	})
}
