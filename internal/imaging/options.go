package imaging

import (
	"image/color"
	"strings"

	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// DefaultBackground is the matte color for content types without alpha.
var DefaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Options controls how a transform renders its result.
type Options struct {
	// ContentType is the target encoding family. It decides whether the
	// result is matted onto Background. Empty means raster.DefaultContentType.
	ContentType raster.ContentType

	// Background is the matte color used when ContentType has no alpha.
	// A fully transparent value (the zero value) means DefaultBackground.
	Background color.NRGBA

	// Upscale lets Resize enlarge images that are smaller than the requested
	// size. When false such images are returned at their original size.
	Upscale bool
}

func (o Options) contentType() (raster.ContentType, error) {
	if o.ContentType == "" {
		return raster.DefaultContentType, nil
	}
	if err := o.ContentType.Validate(); err != nil {
		return "", err
	}
	return o.ContentType, nil
}

func (o Options) background() color.NRGBA {
	if o.Background.A == 0 {
		return DefaultBackground
	}
	bg := o.Background
	bg.A = 0xff
	return bg
}

// canvas allocates a width x height canvas prepared for the target content
// type: filled with the background when the type has no alpha, transparent
// otherwise.
func (o Options) canvas(width, height int) (*raster.Canvas, error) {
	ct, err := o.contentType()
	if err != nil {
		return nil, err
	}
	c, err := raster.NewCanvasSize(width, height)
	if err != nil {
		return nil, err
	}
	if !ct.HasAlpha() {
		c.FillBackground(o.background())
	}
	return c, nil
}

// flatten redraws src onto a fresh canvas prepared for the target content
// type. For JPEG this mattes transparency away; for PNG and GIF it keeps
// alpha, with fully transparent pixels normalized to transparent black.
func (o Options) flatten(src *raster.Buffer) (*raster.Buffer, error) {
	c, err := o.canvas(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	c.DrawImage(src, 0, 0)
	return c.Buffer(), nil
}

// ParseColor parses "#rgb" or "#rrggbb" (the leading '#' is optional) into an
// opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "invalid color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
