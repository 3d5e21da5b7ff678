package imaging

import (
	"fmt"

	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/lucasb-eyer/go-colorful"
)

// ConvertType redraws src for the target content type. Converting to JPEG
// mattes every pixel onto opts.Background and the result is opaque; PNG and
// GIF keep the source alpha.
func ConvertType(src *raster.Buffer, target raster.ContentType, opts Options) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	opts.ContentType = target
	return opts.flatten(src)
}

// Lightness returns the average brightness of src in [0, 255]: the mean over
// all pixels of floor((r+g+b)/3), floored. Alpha is ignored.
func Lightness(src *raster.Buffer) (int, error) {
	if err := src.Validate(); err != nil {
		return 0, err
	}
	var sum int64
	for i := 0; i < len(src.Pix); i += 4 {
		sum += (int64(src.Pix[i]) + int64(src.Pix[i+1]) + int64(src.Pix[i+2])) / 3
	}
	return int(sum / int64(src.Width*src.Height)), nil
}

// WhiteToTransparent returns a copy of src in which every pixel whose red,
// green and blue are all at least 255-tolerance has alpha 0. tolerance is
// clamped to [0, 255]; 0 keys out exact white only.
//
// The result is meant to be encoded as PNG.
func WhiteToTransparent(src *raster.Buffer, tolerance int) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	tolerance = clamp(tolerance, 0, 255)
	threshold := uint8(255 - tolerance)

	out := src.Clone()
	p := out.Pix
	for i := 0; i < len(p); i += 4 {
		if p[i] >= threshold && p[i+1] >= threshold && p[i+2] >= threshold {
			p[i+3] = 0
		}
	}
	return out, nil
}

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor returns the color of the pixel at (x, y).
//
// Coordinates are 0-based with origin at top-left. Values outside the
// buffer are an error. The Hex form excludes alpha; use RGBA.A for
// transparency.
func SampleColor(src *raster.Buffer, x, y int) (*ColorResult, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if x < 0 || x >= src.Width || y < 0 || y >= src.Height {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	c := src.RGBAAt(x, y)
	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGB:  RGBColor{R: c.R, G: c.G, B: c.B},
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  toHSL(c.R, c.G, c.B),
	}, nil
}

// LabeledPoint is a pixel coordinate with an optional label.
type LabeledPoint struct {
	X     int
	Y     int
	Label string
}

// LabeledColorResult combines a color sample with its location and label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// SampleColors samples several points, in input order. Any out-of-bounds
// point fails the whole call.
func SampleColors(src *raster.Buffer, points []LabeledPoint) ([]LabeledColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))
	for _, p := range points {
		c, err := SampleColor(src, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{Label: p.Label, X: p.X, Y: p.Y, Color: *c})
	}
	return results, nil
}

func toHSL(r, g, b uint8) HSLColor {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, l := c.Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}

// clamp constrains val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
