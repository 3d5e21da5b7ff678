package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}
	return s.handleRequest(req)
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatal("Result should hold one content entry")
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

type encodedResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64"`
	OutputPath  string `json:"output_path"`
}

// decodeImage decodes the base64 payload of r.
func decodeImage(t *testing.T, r encodedResult) image.Image {
	t.Helper()

	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("bad image: %v", err)
	}
	return img
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 100, 80, color.NRGBA{255, 0, 0, 255})

	var info struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ContentType string `json:"content_type"`
		HasAlpha    bool   `json:"has_alpha"`
		Opaque      bool   `json:"opaque"`
	}
	decodeResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.ContentType != "image/png" {
		t.Errorf("content_type: got %s, want image/png", info.ContentType)
	}
	if !info.HasAlpha || !info.Opaque {
		t.Errorf("has_alpha=%v opaque=%v, want true true", info.HasAlpha, info.Opaque)
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 200, 150, color.NRGBA{0, 255, 0, 255})

	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}), &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 10, 10, color.NRGBA{0, 0, 0, 255})

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"non-existent file", "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}},
		{"missing source", "image_rotate", map[string]interface{}{}},
		{"scale above one", "image_resize_by_scale", map[string]interface{}{"path": imgPath, "scale": 2.0}},
		{"scale zero", "image_resize_by_scale", map[string]interface{}{"path": imgPath, "scale": 0}},
		{"scale to nothing", "image_resize_by_scale", map[string]interface{}{"path": imgPath, "scale": 0.05}},
		{"unsupported type", "image_convert", map[string]interface{}{"path": imgPath, "content_type": "image/bmp"}},
		{"convert without type", "image_convert", map[string]interface{}{"path": imgPath}},
		{"flip without axis", "image_flip", map[string]interface{}{"path": imgPath}},
		{"crop outside", "image_crop", map[string]interface{}{"path": imgPath, "x1": 0, "y1": 0, "x2": 20, "y2": 5}},
		{"bad base64", "image_lightness", map[string]interface{}{"image_base64": "!!!"}},
		{"not an image", "image_lightness", map[string]interface{}{"image_base64": base64.StdEncoding.EncodeToString([]byte("hello"))}},
		{"bad quality", "image_rotate", map[string]interface{}{"path": imgPath, "quality": 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`"not an object"`),
	}

	resp := s.handleToolsCall(req)

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_ResizeByScale(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 100, 60, color.NRGBA{10, 20, 30, 255})

	var r encodedResult
	decodeResult(t, callTool(t, s, "image_resize_by_scale", map[string]interface{}{
		"path":  imgPath,
		"scale": 0.25,
	}), &r)

	if r.Width != 25 || r.Height != 15 {
		t.Errorf("got %dx%d, want 25x15", r.Width, r.Height)
	}
	if r.ContentType != "image/png" || r.MimeType != "image/png" {
		t.Errorf("content type: got %s/%s, want image/png", r.ContentType, r.MimeType)
	}
	img := decodeImage(t, r)
	if got := color.NRGBAModel.Convert(img.At(12, 7)).(color.NRGBA); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("pixel: got %v, want {10 20 30 255}", got)
	}
}

func TestHandleToolsCall_Resize(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 200, 100, color.NRGBA{200, 0, 0, 255})

	tests := []struct {
		name  string
		args  map[string]interface{}
		wantW int
		wantH int
	}{
		{"width only", map[string]interface{}{"width": 50}, 50, 25},
		{"height only", map[string]interface{}{"height": 20}, 40, 20},
		{"max size", map[string]interface{}{"max_size": 100}, 100, 50},
		{"max size larger", map[string]interface{}{"max_size": 500}, 200, 100},
		{"no upscale", map[string]interface{}{"width": 400}, 200, 100},
		{"upscale", map[string]interface{}{"width": 400, "upscale": true}, 400, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["path"] = imgPath
			var r encodedResult
			decodeResult(t, callTool(t, s, "image_resize", tt.args), &r)
			if r.Width != tt.wantW || r.Height != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", r.Width, r.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestHandleToolsCall_Rotate(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 40, 10, color.NRGBA{0, 0, 255, 255})

	tests := []struct {
		name      string
		direction interface{}
		wantW     int
		wantH     int
	}{
		{"default clockwise", nil, 10, 40},
		{"counter-clockwise", -1, 10, 40},
		{"none", 0, 40, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{"path": imgPath}
			if tt.direction != nil {
				args["direction"] = tt.direction
			}
			var r encodedResult
			decodeResult(t, callTool(t, s, "image_rotate", args), &r)
			if r.Width != tt.wantW || r.Height != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", r.Width, r.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestHandleToolsCall_Flip(t *testing.T) {
	s := New(nil)

	// Left column red, rest blue
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBA{0, 0, 255, 255}
			if x == 0 {
				c = color.NRGBA{255, 0, 0, 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	var r encodedResult
	decodeResult(t, callTool(t, s, "image_flip", map[string]interface{}{
		"image_base64": base64.StdEncoding.EncodeToString(buf.Bytes()),
		"flip":         true,
	}), &r)

	img := decodeImage(t, r)
	if got := color.NRGBAModel.Convert(img.At(3, 1)).(color.NRGBA); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("right column: got %v, want red", got)
	}
	if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("left column: got %v, want blue", got)
	}
}

func TestHandleToolsCall_Convert(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 8, 8, color.NRGBA{0, 0, 0, 0})

	var r encodedResult
	decodeResult(t, callTool(t, s, "image_convert", map[string]interface{}{
		"path":         imgPath,
		"content_type": "jpg",
	}), &r)

	if r.ContentType != "image/jpeg" {
		t.Fatalf("content_type: got %s, want image/jpeg", r.ContentType)
	}
	data, _ := base64.StdEncoding.DecodeString(r.ImageBase64)
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		t.Error("result is not a JPEG stream")
	}

	// Transparent pixels are matted onto white
	img := decodeImage(t, r)
	cr, cg, cb, _ := img.At(4, 4).RGBA()
	if cr>>8 < 250 || cg>>8 < 250 || cb>>8 < 250 {
		t.Errorf("pixel: got (%d,%d,%d), want near white", cr>>8, cg>>8, cb>>8)
	}
}

func TestHandleToolsCall_Lightness(t *testing.T) {
	s := New(nil)

	tests := []struct {
		name string
		c    color.NRGBA
		want int
	}{
		{"white", color.NRGBA{255, 255, 255, 255}, 255},
		{"black", color.NRGBA{0, 0, 0, 255}, 0},
		{"mid", color.NRGBA{30, 60, 90, 255}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imgPath := createTestImageFile(t, 5, 5, tt.c)
			var r LightnessResult
			decodeResult(t, callTool(t, s, "image_lightness", map[string]interface{}{"path": imgPath}), &r)
			if r.Lightness != tt.want {
				t.Errorf("got %d, want %d", r.Lightness, tt.want)
			}
		})
	}
}

func TestHandleToolsCall_WhiteToTransparent(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 4, 4, color.NRGBA{250, 250, 250, 255})

	tests := []struct {
		name      string
		tolerance int
		wantAlpha uint8
	}{
		{"exact white only", 0, 255},
		{"tolerance covers", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r encodedResult
			decodeResult(t, callTool(t, s, "image_white_to_transparent", map[string]interface{}{
				"path":         imgPath,
				"tolerance":    tt.tolerance,
				"content_type": "image/jpeg",
			}), &r)
			if r.ContentType != "image/png" {
				t.Errorf("content_type: got %s, want image/png", r.ContentType)
			}
			got := color.NRGBAModel.Convert(decodeImage(t, r).At(1, 1)).(color.NRGBA)
			if got.A != tt.wantAlpha {
				t.Errorf("alpha: got %d, want %d", got.A, tt.wantAlpha)
			}
		})
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 100, 100, color.NRGBA{255, 128, 64, 255})

	var c struct {
		Hex string `json:"hex"`
	}
	decodeResult(t, callTool(t, s, "image_sample_color", map[string]interface{}{
		"path": imgPath,
		"x":    50,
		"y":    50,
	}), &c)

	if c.Hex != "#FF8040" {
		t.Errorf("hex: got %s, want #FF8040", c.Hex)
	}
}

func TestHandleToolsCall_SampleColorPoints(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 10, 10, color.NRGBA{0, 255, 0, 255})

	var results []struct {
		Label string `json:"label"`
		X     int    `json:"x"`
		Color struct {
			Hex string `json:"hex"`
		} `json:"color"`
	}
	decodeResult(t, callTool(t, s, "image_sample_color", map[string]interface{}{
		"path": imgPath,
		"points": []map[string]interface{}{
			{"x": 0, "y": 0, "label": "corner"},
			{"x": 9, "y": 9},
		},
	}), &results)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Label != "corner" || results[1].X != 9 {
		t.Errorf("results out of order: %+v", results)
	}
	for _, r := range results {
		if r.Color.Hex != "#00FF00" {
			t.Errorf("hex: got %s, want #00FF00", r.Color.Hex)
		}
	}
}

func TestHandleToolsCall_Crop(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 100, 100, color.NRGBA{0, 0, 255, 255})

	var r encodedResult
	decodeResult(t, callTool(t, s, "image_crop", map[string]interface{}{
		"path": imgPath,
		"x1":   10,
		"y1":   20,
		"x2":   60,
		"y2":   50,
	}), &r)

	if r.Width != 50 || r.Height != 30 {
		t.Errorf("got %dx%d, want 50x30", r.Width, r.Height)
	}
}

func TestHandleToolsCall_CropQuadrant(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 100, 80, color.NRGBA{0, 0, 255, 255})

	tests := []struct {
		region string
		wantW  int
		wantH  int
	}{
		{"top-left", 50, 40},
		{"right-half", 50, 80},
		{"center", 50, 40},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			var r encodedResult
			decodeResult(t, callTool(t, s, "image_crop_quadrant", map[string]interface{}{
				"path":   imgPath,
				"region": tt.region,
			}), &r)
			if r.Width != tt.wantW || r.Height != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", r.Width, r.Height, tt.wantW, tt.wantH)
			}
		})
	}

	resp := callTool(t, s, "image_crop_quadrant", map[string]interface{}{"path": imgPath, "region": "middle"})
	if resp.Error == nil {
		t.Error("expected error for unknown region")
	}
}

func TestHandleToolsCall_OutputPath(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 20, 20, color.NRGBA{1, 2, 3, 255})
	outPath := filepath.Join(t.TempDir(), "out.gif")

	var r encodedResult
	decodeResult(t, callTool(t, s, "image_rotate", map[string]interface{}{
		"path":         imgPath,
		"content_type": "gif",
		"output_path":  outPath,
	}), &r)

	if r.ImageBase64 != "" {
		t.Error("image_base64 should be empty when output_path is set")
	}
	if r.OutputPath != outPath {
		t.Errorf("output_path: got %s, want %s", r.OutputPath, outPath)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "GIF8") {
		t.Error("output is not a GIF")
	}
}
