package imaging

import (
	"image"
	"math"

	"github.com/ironsheep/image-transform-mcp/internal/raster"
)

// Rotate turns src by a quarter turn: clockwise when direction > 0,
// counter-clockwise when direction < 0. Zero returns a redrawn copy.
//
// The source is painted centered on a square canvas of max(w, h), rotated
// about the canvas center, and the rotated source rectangle is cut back out,
// giving an h x w result. Pixels are moved, never resampled.
func Rotate(src *raster.Buffer, direction int, opts Options) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	turns := 0
	switch {
	case direction > 0:
		turns = 1
	case direction < 0:
		turns = -1
	}
	if turns == 0 {
		return opts.flatten(src)
	}

	side := max(src.Width, src.Height)
	work, err := opts.canvas(side, side)
	if err != nil {
		return nil, err
	}
	// Integer offsets keep every pixel center on a pixel center after the turn.
	ox, oy := (side-src.Width)/2, (side-src.Height)/2
	center := float64(side) / 2

	work.Translate(center, center)
	work.Rotate(float64(turns) * math.Pi / 2)
	work.Translate(-center, -center)
	work.DrawImage(src, float64(ox), float64(oy))

	placed := image.Rect(ox, oy, ox+src.Width, oy+src.Height)
	return work.GetRegion(transformRect(work.Transform(), placed))
}

// transformRect returns the axis-aligned bounds of r under m, rounded to
// whole pixels.
func transformRect(m raster.Matrix, r image.Rectangle) image.Rectangle {
	x0, y0 := m.Apply(float64(r.Min.X), float64(r.Min.Y))
	x1, y1 := m.Apply(float64(r.Max.X), float64(r.Max.Y))
	return image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	)
}

// FlipFlop mirrors src horizontally (flip) and/or vertically (flop) by
// drawing it through a negative scale onto a fresh canvas of the same size.
func FlipFlop(src *raster.Buffer, flip, flop bool, opts Options) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	work, err := opts.canvas(src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	tx, sx := 0.0, 1.0
	if flip {
		tx, sx = float64(src.Width), -1
	}
	ty, sy := 0.0, 1.0
	if flop {
		ty, sy = float64(src.Height), -1
	}
	work.Translate(tx, ty)
	work.Scale(sx, sy)
	work.DrawImage(src, 0, 0)
	return work.Buffer(), nil
}

// Flip mirrors src left to right.
func Flip(src *raster.Buffer, opts Options) (*raster.Buffer, error) {
	return FlipFlop(src, true, false, opts)
}

// Flop mirrors src top to bottom.
func Flop(src *raster.Buffer, opts Options) (*raster.Buffer, error) {
	return FlipFlop(src, false, true, opts)
}
