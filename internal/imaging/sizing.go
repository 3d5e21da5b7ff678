package imaging

import (
	"math"

	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/pkg/errors"
)

// Size is a target bounding box. A zero Width or Height is inferred from the
// other dimension and the source aspect ratio.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MaxSize returns a square box of n, which bounds the longer image side.
func MaxSize(n int) Size {
	return Size{Width: n, Height: n}
}

// FitScale returns the uniform factor that makes a srcW x srcH image fit
// inside size while keeping its aspect ratio.
func FitScale(srcW, srcH int, size Size) (float64, error) {
	if srcW < 1 || srcH < 1 {
		return 0, errors.Wrapf(raster.ErrInvalidDimension, "source %dx%d", srcW, srcH)
	}
	if size.Width < 0 || size.Height < 0 || (size.Width == 0 && size.Height == 0) {
		return 0, errors.Wrapf(raster.ErrInvalidDimension, "target %dx%d", size.Width, size.Height)
	}

	w, h := float64(size.Width), float64(size.Height)
	if w == 0 {
		w = float64(srcW) * h / float64(srcH)
	}
	if h == 0 {
		h = float64(srcH) * w / float64(srcW)
	}
	return math.Min(w/float64(srcW), h/float64(srcH)), nil
}

// Resize fits src inside size. Reductions go through the box filter of
// ResizeByScale. When the image already fits, it is returned unchanged
// (redrawn for opts.ContentType) unless opts.Upscale asks for Upscale.
func Resize(src *raster.Buffer, size Size, opts Options) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	scale, err := FitScale(src.Width, src.Height, size)
	if err != nil {
		return nil, err
	}
	switch {
	case scale < 1:
		return ResizeByScale(src, scale, opts)
	case scale > 1 && opts.Upscale:
		w := int(math.Round(float64(src.Width) * scale))
		h := int(math.Round(float64(src.Height) * scale))
		return Upscale(src, w, h, opts)
	}
	return opts.flatten(src)
}
