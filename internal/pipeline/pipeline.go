package pipeline

import (
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/ironsheep/image-transform-mcp/internal/imaging"
	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/pkg/errors"
)

// Image is a decoded raster together with the content type it came in as.
type Image struct {
	Raster      *raster.Buffer
	ContentType raster.ContentType
}

// Result is a transformed raster, the content type it was rendered for and
// the quality to encode it with.
type Result struct {
	Raster      *raster.Buffer
	ContentType raster.ContentType
	Quality     int
}

// Settings are the pipeline-wide defaults.
type Settings struct {
	// ContentType is used when neither the request nor the image names one.
	ContentType raster.ContentType
	// Background is the matte color for JPEG output.
	Background color.NRGBA
	// Quality is the JPEG quality (1-100) used when a request gives none.
	Quality int
	// AutoOrient applies the JPEG EXIF orientation tag while decoding.
	AutoOrient bool
	// AllowUpscale lets Resize enlarge images for every request.
	AllowUpscale bool
	// MaxDimension rejects decoded images whose width or height exceeds it.
	// Zero disables the check.
	MaxDimension int
}

// DefaultSettings returns the settings used when no configuration is given.
func DefaultSettings() Settings {
	return Settings{
		ContentType:  raster.DefaultContentType,
		Background:   imaging.DefaultBackground,
		Quality:      100,
		AutoOrient:   true,
		MaxDimension: 16384,
	}
}

// Options are per-request overrides.
type Options struct {
	// ContentType to render for. Empty means the source image's own type.
	ContentType raster.ContentType
	// Quality for JPEG encoding. Zero means Settings.Quality.
	Quality int
	// Upscale lets Resize enlarge this image.
	Upscale bool
}

// Pipeline resolves content types and background policy for each request,
// dispatches to the imaging operations, and encodes the results.
type Pipeline struct {
	settings Settings
}

// New creates a pipeline with the given settings.
func New(s Settings) *Pipeline {
	if s.ContentType == "" {
		s.ContentType = raster.DefaultContentType
	}
	if s.Quality == 0 {
		s.Quality = 100
	}
	if s.Background.A == 0 {
		s.Background = imaging.DefaultBackground
	}
	return &Pipeline{settings: s}
}

// Settings returns the pipeline defaults.
func (p *Pipeline) Settings() Settings { return p.settings }

// resolve picks the target content type and quality for a request on img.
func (p *Pipeline) resolve(img *Image, o Options) (imaging.Options, int, error) {
	if img == nil || img.Raster == nil {
		return imaging.Options{}, 0, errors.Wrap(raster.ErrInvalidDimension, "no image")
	}
	ct := o.ContentType
	if ct == "" {
		ct = img.ContentType
	}
	if ct == "" {
		ct = p.settings.ContentType
	}
	if err := ct.Validate(); err != nil {
		return imaging.Options{}, 0, err
	}
	q := o.Quality
	if q == 0 {
		q = p.settings.Quality
	}
	if q < 1 || q > 100 {
		return imaging.Options{}, 0, errors.Errorf("quality %d outside 1..100", q)
	}
	return imaging.Options{
		ContentType: ct,
		Background:  p.settings.Background,
		Upscale:     o.Upscale || p.settings.AllowUpscale,
	}, q, nil
}

// run resolves the request, applies fn and logs the outcome.
func (p *Pipeline) run(op string, img *Image, o Options, fn func(imaging.Options) (*raster.Buffer, error)) (*Result, error) {
	start := time.Now()
	opts, q, err := p.resolve(img, o)
	if err != nil {
		Logger().Warn("rejected request", "op", op, "error", err)
		return nil, err
	}
	out, err := fn(opts)
	if err != nil {
		Logger().Warn("transform failed", "op", op, "error", err)
		return nil, errors.Wrapf(err, "%s", op)
	}
	Logger().Debug("transform",
		"op", op,
		slog.Group("src", "w", img.Raster.Width, "h", img.Raster.Height, "type", img.ContentType),
		slog.Group("dst", "w", out.Width, "h", out.Height, "type", opts.ContentType),
		"elapsed", time.Since(start),
	)
	return &Result{Raster: out, ContentType: opts.ContentType, Quality: q}, nil
}

// ResizeByScale shrinks img by scale in (0, 1] with the box filter.
func (p *Pipeline) ResizeByScale(img *Image, scale float64, o Options) (*Result, error) {
	return p.run("resize_by_scale", img, o, func(opts imaging.Options) (*raster.Buffer, error) {
		return imaging.ResizeByScale(img.Raster, scale, opts)
	})
}

// Resize fits img inside size; a zero dimension is inferred from the aspect ratio.
func (p *Pipeline) Resize(img *Image, size imaging.Size, o Options) (*Result, error) {
	return p.run("resize", img, o, func(opts imaging.Options) (*raster.Buffer, error) {
		return imaging.Resize(img.Raster, size, opts)
	})
}

// FitWithin shrinks img so that its longer side is at most maxSize. Images
// that already fit are redrawn at scale 1.
func (p *Pipeline) FitWithin(img *Image, maxSize int, o Options) (*Result, error) {
	return p.run("fit_within", img, o, func(opts imaging.Options) (*raster.Buffer, error) {
		if maxSize < 1 {
			return nil, errors.Wrapf(raster.ErrInvalidDimension, "max size %d", maxSize)
		}
		longer := max(img.Raster.Width, img.Raster.Height)
		scale := math.Min(1, float64(maxSize)/float64(longer))
		return imaging.ResizeByScale(img.Raster, scale, opts)
	})
}

// Rotate turns img a quarter turn clockwise (direction > 0) or
// counter-clockwise (direction < 0).
func (p *Pipeline) Rotate(img *Image, direction int, o Options) (*Result, error) {
	return p.run("rotate", img, o, func(opts imaging.Options) (*raster.Buffer, error) {
		return imaging.Rotate(img.Raster, direction, opts)
	})
}

// FlipFlop mirrors img horizontally and/or vertically.
func (p *Pipeline) FlipFlop(img *Image, flip, flop bool, o Options) (*Result, error) {
	return p.run("flip_flop", img, o, func(opts imaging.Options) (*raster.Buffer, error) {
		return imaging.FlipFlop(img.Raster, flip, flop, opts)
	})
}

// Flip mirrors img left to right.
func (p *Pipeline) Flip(img *Image, o Options) (*Result, error) {
	return p.FlipFlop(img, true, false, o)
}

// Flop mirrors img top to bottom.
func (p *Pipeline) Flop(img *Image, o Options) (*Result, error) {
	return p.FlipFlop(img, false, true, o)
}

// ConvertType redraws img for target.
func (p *Pipeline) ConvertType(img *Image, target raster.ContentType, o Options) (*Result, error) {
	o.ContentType = target
	return p.run("convert", img, o, func(opts imaging.Options) (*raster.Buffer, error) {
		return imaging.ConvertType(img.Raster, target, opts)
	})
}

// WhiteToTransparent keys near-white pixels out. The result is always PNG.
func (p *Pipeline) WhiteToTransparent(img *Image, tolerance int, o Options) (*Result, error) {
	o.ContentType = raster.PNG
	return p.run("white_to_transparent", img, o, func(imaging.Options) (*raster.Buffer, error) {
		return imaging.WhiteToTransparent(img.Raster, tolerance)
	})
}

// Crop extracts the region (x1,y1)-(x2,y2) of img.
func (p *Pipeline) Crop(img *Image, x1, y1, x2, y2 int, o Options) (*Result, error) {
	return p.run("crop", img, o, func(imaging.Options) (*raster.Buffer, error) {
		return imaging.Crop(img.Raster, x1, y1, x2, y2)
	})
}

// Lightness returns the average brightness of img in [0, 255].
func (p *Pipeline) Lightness(img *Image) (int, error) {
	if img == nil || img.Raster == nil {
		return 0, errors.Wrap(raster.ErrInvalidDimension, "no image")
	}
	return imaging.Lightness(img.Raster)
}

// SampleColor returns the color of the pixel at (x, y) of img.
func (p *Pipeline) SampleColor(img *Image, x, y int) (*imaging.ColorResult, error) {
	if img == nil || img.Raster == nil {
		return nil, errors.Wrap(raster.ErrInvalidDimension, "no image")
	}
	return imaging.SampleColor(img.Raster, x, y)
}

// CropQuadrant extracts a named region of img, such as "top-left" or "center".
func (p *Pipeline) CropQuadrant(img *Image, region string, o Options) (*Result, error) {
	return p.run("crop_quadrant", img, o, func(imaging.Options) (*raster.Buffer, error) {
		return imaging.CropQuadrant(img.Raster, region)
	})
}

// SampleColors samples several labeled points of img, in input order.
func (p *Pipeline) SampleColors(img *Image, points []imaging.LabeledPoint) ([]imaging.LabeledColorResult, error) {
	if img == nil || img.Raster == nil {
		return nil, errors.Wrap(raster.ErrInvalidDimension, "no image")
	}
	return imaging.SampleColors(img.Raster, points)
}
