package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/image-transform-mcp/internal/raster"
)

// Crop extracts the region (x1,y1)-(x2,y2) of src into a new buffer.
// (x1,y1) is inclusive and (x2,y2) exclusive; the region must lie inside src.
func Crop(src *raster.Buffer, x1, y1, x2, y2 int) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if x1 < 0 || y1 < 0 || x2 > src.Width || y2 > src.Height {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, src.Width, src.Height)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return raster.NewCanvas(src).GetRegion(image.Rect(x1, y1, x2, y2))
}

// CropQuadrant extracts a named region: top-left, top-right, bottom-left,
// bottom-right, top-half, bottom-half, left-half, right-half or center
// (the middle 50% on both axes).
func CropQuadrant(src *raster.Buffer, region string) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	w, h := src.Width, src.Height
	midX, midY := w/2, h/2

	var x1, y1, x2, y2 int
	switch region {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		qW, qH := w/4, h/4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return nil, fmt.Errorf("unknown region: %s", region)
	}
	return Crop(src, x1, y1, x2, y2)
}
