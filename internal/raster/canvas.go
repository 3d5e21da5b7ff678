package raster

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Interpolation selects the sampler used by Canvas.DrawScaled.
type Interpolation int

const (
	// Nearest copies the closest source pixel; lossless for integer ratios.
	Nearest Interpolation = iota
	// Bilinear blends the four closest source pixels.
	Bilinear
)

func (i Interpolation) scaler() xdraw.Scaler {
	if i == Bilinear {
		return xdraw.ApproxBiLinear
	}
	return xdraw.NearestNeighbor
}

// Canvas is a drawing surface over a destination Buffer. It keeps a current
// transform that DrawImage applies, mirroring the 2D canvas model: each call
// to Translate, Scale or Rotate is applied to user coordinates before the
// transforms already in place.
//
// A Canvas only ever writes to its own destination buffer.
type Canvas struct {
	dst   *Buffer
	ctm   Matrix
	stack []Matrix
}

// NewCanvas returns a canvas drawing into dst with the identity transform.
func NewCanvas(dst *Buffer) *Canvas {
	return &Canvas{dst: dst, ctm: Identity()}
}

// NewCanvasSize allocates a transparent buffer and wraps it in a canvas.
func NewCanvasSize(width, height int) (*Canvas, error) {
	b, err := New(width, height)
	if err != nil {
		return nil, err
	}
	return NewCanvas(b), nil
}

// Buffer returns the destination buffer.
func (c *Canvas) Buffer() *Buffer { return c.dst }

// Width returns the destination width.
func (c *Canvas) Width() int { return c.dst.Width }

// Height returns the destination height.
func (c *Canvas) Height() int { return c.dst.Height }

// Transform returns the current transform.
func (c *Canvas) Transform() Matrix { return c.ctm }

// SetTransform replaces the current transform.
func (c *Canvas) SetTransform(m Matrix) { c.ctm = m }

// ResetTransform restores the identity transform.
func (c *Canvas) ResetTransform() { c.ctm = Identity() }

// Translate moves the user-space origin by (x, y).
func (c *Canvas) Translate(x, y float64) { c.ctm = c.ctm.Multiply(Translate(x, y)) }

// Scale scales user space; negative factors mirror it.
func (c *Canvas) Scale(x, y float64) { c.ctm = c.ctm.Multiply(Scale(x, y)) }

// Rotate rotates user space clockwise by angle radians.
func (c *Canvas) Rotate(angle float64) { c.ctm = c.ctm.Multiply(Rotate(angle)) }

// Save pushes the current transform.
func (c *Canvas) Save() { c.stack = append(c.stack, c.ctm) }

// Restore pops the transform saved by the matching Save. Without one it
// is a no-op.
func (c *Canvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.ctm = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

// FillBackground paints every destination pixel with col, ignoring the
// current transform.
func (c *Canvas) FillBackground(col color.NRGBA) { c.dst.Fill(col) }

// Clear makes every destination pixel transparent black.
func (c *Canvas) Clear() { c.dst.Fill(color.NRGBA{}) }

// DrawImage composites src (source-over) with its top-left corner at user
// coordinates (x, y), under the current transform.
//
// Every destination pixel whose center maps back inside src takes the source
// pixel it lands on. Quarter turns, mirrors and integer translations therefore
// reproduce source pixels exactly.
func (c *Canvas) DrawImage(src *Buffer, x, y float64) {
	inv, ok := c.ctm.Invert()
	if !ok {
		return
	}
	area := c.deviceBounds(x, y, float64(src.Width), float64(src.Height))
	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			ux, uy := inv.Apply(float64(px)+0.5, float64(py)+0.5)
			sx := int(math.Floor(ux - x))
			sy := int(math.Floor(uy - y))
			if sx < 0 || sx >= src.Width || sy < 0 || sy >= src.Height {
				continue
			}
			si := src.PixOffset(sx, sy)
			blendOver(c.dst.Pix[c.dst.PixOffset(px, py):], src.Pix[si:si+4])
		}
	}
}

// deviceBounds returns the destination pixels covered by the user-space
// rectangle (x, y, w, h) after transformation, clipped to the canvas.
func (c *Canvas) deviceBounds(x, y, w, h float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}} {
		dx, dy := c.ctm.Apply(p[0], p[1])
		minX, maxX = math.Min(minX, dx), math.Max(maxX, dx)
		minY, maxY = math.Min(minY, dy), math.Max(maxY, dy)
	}
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
	return r.Intersect(c.dst.Rect())
}

// DrawInto composites the srcRect region of src onto the destination with its
// top-left corner at (destX, destY). The current transform is not applied.
// The region is clipped to both buffers, so out-of-range offsets draw
// whatever part remains visible, possibly nothing.
func (c *Canvas) DrawInto(src *Buffer, srcRect image.Rectangle, destX, destY int) {
	sr := srcRect.Intersect(src.Rect())
	if sr.Empty() {
		return
	}
	// Shift the destination origin by however much the source rect was clipped.
	destX += sr.Min.X - srcRect.Min.X
	destY += sr.Min.Y - srcRect.Min.Y
	dr := image.Rect(destX, destY, destX+sr.Dx(), destY+sr.Dy()).Intersect(c.dst.Rect())
	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			si := src.PixOffset(sr.Min.X+px-destX, sr.Min.Y+py-destY)
			blendOver(c.dst.Pix[c.dst.PixOffset(px, py):], src.Pix[si:si+4])
		}
	}
}

// DrawScaled composites the srcRect region of src scaled into dstRect.
// The current transform is not applied.
func (c *Canvas) DrawScaled(src *Buffer, srcRect, dstRect image.Rectangle, interp Interpolation) {
	srcRect = srcRect.Intersect(src.Rect())
	if srcRect.Empty() || dstRect.Empty() {
		return
	}
	interp.scaler().Scale(c.dst.NRGBA(), dstRect, src.NRGBA(), srcRect, xdraw.Over, nil)
}

// GetRegion copies a region of the destination into a new buffer.
func (c *Canvas) GetRegion(r image.Rectangle) (*Buffer, error) {
	return c.dst.SubBuffer(r)
}

// PutRegion writes src at (x, y) without compositing.
func (c *Canvas) PutRegion(src *Buffer, x, y int) {
	c.dst.PutBuffer(src, x, y)
}

// blendOver composites the straight-alpha source pixel s over d in place.
func blendOver(d []uint8, s []uint8) {
	sa := s[3]
	switch {
	case sa == 0:
		return
	case sa == 0xff || d[3] == 0:
		copy(d[:4], s[:4])
		return
	}
	as := float64(sa) / 255
	ad := float64(d[3]) / 255 * (1 - as)
	out := as + ad
	for i := 0; i < 3; i++ {
		d[i] = ClampUint8((float64(s[i])*as + float64(d[i])*ad) / out)
	}
	d[3] = ClampUint8(out * 255)
}

// ClampUint8 rounds v half away from zero and clamps it to [0, 255].
func ClampUint8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
