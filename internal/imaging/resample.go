package imaging

import (
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/pkg/errors"
)

// sizeEpsilon absorbs float error in w*scale before flooring, so that
// 100*0.3 yields 30 rather than 29.
const sizeEpsilon = 1e-9

// ResizeByScale shrinks src by a uniform factor using an area-weighted box
// filter and returns a new buffer of floor(w*scale) x floor(h*scale).
//
// Each source pixel covers a scale x scale footprint in target space. Its RGB
// value is added to every target pixel the footprint overlaps, weighted by the
// overlap area, so one source pixel always contributes scale*scale in total.
// The accumulated channels are rounded to the nearest integer and clamped.
//
// The source is first drawn onto a canvas prepared for opts.ContentType:
// onto the background for JPEG, onto transparency otherwise. Alpha itself is
// not area-weighted; every output pixel is fully opaque.
//
// scale must lie in (0, 1], and the result must be at least 1x1; anything
// else is an ErrInvalidDimension.
func ResizeByScale(src *raster.Buffer, scale float64, opts Options) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 || scale > 1 {
		return nil, errors.Wrapf(raster.ErrInvalidDimension, "scale %g outside (0,1]", scale)
	}
	tw := scaledLength(src.Width, scale)
	th := scaledLength(src.Height, scale)
	if tw < 1 || th < 1 {
		return nil, errors.Wrapf(raster.ErrInvalidDimension, "scale %g reduces %dx%d to %dx%d",
			scale, src.Width, src.Height, tw, th)
	}

	prepared, err := opts.flatten(src)
	if err != nil {
		return nil, err
	}
	acc := accumulate(prepared, scale, tw, th)

	out, err := raster.New(tw, th)
	if err != nil {
		return nil, err
	}
	for p := 0; p < tw*th; p++ {
		out.Pix[p*4+0] = raster.ClampUint8(acc[p*3+0])
		out.Pix[p*4+1] = raster.ClampUint8(acc[p*3+1])
		out.Pix[p*4+2] = raster.ClampUint8(acc[p*3+2])
		out.Pix[p*4+3] = 0xff
	}
	return out, nil
}

func scaledLength(n int, scale float64) int {
	return int(math.Floor(float64(n)*scale + sizeEpsilon))
}

// axisSpan is where one source row or column lands along a target axis:
// it starts in target pixel idx with weight w and spills weight nw into
// idx+1. w+nw always equals the scale.
type axisSpan struct {
	idx   int
	w, nw float64
}

func spanAt(t, scale float64) axisSpan {
	idx := int(math.Floor(t))
	if idx == int(math.Floor(t+scale)) {
		return axisSpan{idx: idx, w: scale}
	}
	w := float64(idx+1) - t
	return axisSpan{idx: idx, w: w, nw: scale - w}
}

func spans(n int, scale float64) []axisSpan {
	s := make([]axisSpan, n)
	for i := range s {
		s[i] = spanAt(float64(i)*scale, scale)
	}
	return s
}

// share is one part of a source pixel's contribution to target (x, y).
type share struct {
	x, y   int
	weight float64
}

// footprintShares splits the footprint of a source pixel at target position
// (tx, ty) into up to four weighted shares: none, one or both axes may cross
// a target pixel boundary. Zero-weight shares are omitted.
func footprintShares(tx, ty, scale float64) []share {
	return appendShares(nil, spanAt(tx, scale), spanAt(ty, scale))
}

func appendShares(dst []share, sx, sy axisSpan) []share {
	for _, s := range [4]share{
		{sx.idx, sy.idx, sx.w * sy.w},
		{sx.idx + 1, sy.idx, sx.nw * sy.w},
		{sx.idx, sy.idx + 1, sx.w * sy.nw},
		{sx.idx + 1, sy.idx + 1, sx.nw * sy.nw},
	} {
		if s.weight > 0 {
			dst = append(dst, s)
		}
	}
	return dst
}

// accumulate returns the tw*th*3 float RGB sums of src scaled by scale.
// Shares falling outside the target grid belong to the trailing partial
// pixel that the floor in the target size cuts off, and are dropped.
func accumulate(src *raster.Buffer, scale float64, tw, th int) []float64 {
	acc := make([]float64, tw*th*3)
	cols := spans(src.Width, scale)
	rows := spans(src.Height, scale)
	buf := make([]share, 0, 4)

	for sy, ys := range rows {
		if ys.idx >= th {
			break
		}
		for sx, xs := range cols {
			if xs.idx >= tw {
				break
			}
			i := src.PixOffset(sx, sy)
			r := float64(src.Pix[i])
			g := float64(src.Pix[i+1])
			b := float64(src.Pix[i+2])

			buf = appendShares(buf[:0], xs, ys)
			for _, s := range buf {
				if s.x >= tw || s.y >= th {
					continue
				}
				t := (s.y*tw + s.x) * 3
				acc[t+0] += r * s.weight
				acc[t+1] += g * s.weight
				acc[t+2] += b * s.weight
			}
		}
	}
	return acc
}

// Upscale enlarges src to width x height by nearest-neighbour sampling.
// It is the separate path Resize takes when growing an image; the box filter
// in ResizeByScale only reduces.
func Upscale(src *raster.Buffer, width, height int, opts Options) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, errors.Wrapf(raster.ErrInvalidDimension, "upscale to %dx%d", width, height)
	}
	prepared, err := opts.flatten(src)
	if err != nil {
		return nil, err
	}
	return raster.FromImage(transform.Resize(prepared.NRGBA(), width, height, transform.NearestNeighbor))
}
