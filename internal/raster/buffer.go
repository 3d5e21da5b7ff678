package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Buffer is a width x height grid of straight (non-premultiplied) RGBA
// pixels, 8 bits per channel, stored row-major with a stride of 4*Width.
//
// A Buffer returned by this package or by the transform packages is owned by
// the caller. Transform operations read their source buffers and never
// modify them.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a transparent-black buffer.
func New(width, height int) (*Buffer, error) {
	if width < 1 || height < 1 {
		return nil, invalidDimension(width, height)
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// FromPix wraps an existing pixel slice without copying it.
func FromPix(width, height int, pix []uint8) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Pix: pix}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// FromImage converts any image.Image into a new Buffer. Premultiplied
// sources are un-premultiplied on the way in.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidDimension, "nil image")
	}
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, invalidDimension(bounds.Dx(), bounds.Dy())
	}
	nrgba := imaging.Clone(img)
	return &Buffer{
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Pix:    nrgba.Pix,
	}, nil
}

// Validate checks the dimension and length invariants.
func (b *Buffer) Validate() error {
	if b == nil {
		return errors.Wrap(ErrInvalidDimension, "nil buffer")
	}
	if b.Width < 1 || b.Height < 1 {
		return invalidDimension(b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return errors.Wrapf(ErrBufferSizeMismatch, "%dx%d needs %d bytes, have %d",
			b.Width, b.Height, want, len(b.Pix))
	}
	return nil
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Rect returns the buffer bounds, always anchored at (0,0).
func (b *Buffer) Rect() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (b *Buffer) PixOffset(x, y int) int {
	return (y*b.Width + x) * 4
}

// RGBAAt returns the pixel at (x, y), or transparent black outside the buffer.
func (b *Buffer) RGBAAt(x, y int) color.NRGBA {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return color.NRGBA{}
	}
	i := b.PixOffset(x, y)
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// SetRGBA sets the pixel at (x, y); writes outside the buffer are ignored.
func (b *Buffer) SetRGBA(x, y int, c color.NRGBA) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	i := b.PixOffset(x, y)
	b.Pix[i+0] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

// Fill paints every pixel with c.
func (b *Buffer) Fill(c color.NRGBA) {
	for i := 0; i < len(b.Pix); i += 4 {
		b.Pix[i+0] = c.R
		b.Pix[i+1] = c.G
		b.Pix[i+2] = c.B
		b.Pix[i+3] = c.A
	}
}

// SubBuffer copies the part of r that lies inside the buffer into a new
// Buffer. An empty intersection is an ErrInvalidDimension.
func (b *Buffer) SubBuffer(r image.Rectangle) (*Buffer, error) {
	r = r.Intersect(b.Rect())
	if r.Empty() {
		return nil, errors.Wrapf(ErrInvalidDimension, "region %v outside %dx%d", r, b.Width, b.Height)
	}
	out, err := New(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	rowLen := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		si := b.PixOffset(r.Min.X, r.Min.Y+y)
		di := out.PixOffset(0, y)
		copy(out.Pix[di:di+rowLen], b.Pix[si:si+rowLen])
	}
	return out, nil
}

// PutBuffer replaces the pixels at (x, y) with src, without compositing.
// The parts of src falling outside b are dropped.
func (b *Buffer) PutBuffer(src *Buffer, x, y int) {
	dr := image.Rect(x, y, x+src.Width, y+src.Height).Intersect(b.Rect())
	if dr.Empty() {
		return
	}
	rowLen := dr.Dx() * 4
	for dy := dr.Min.Y; dy < dr.Max.Y; dy++ {
		si := src.PixOffset(dr.Min.X-x, dy-y)
		di := b.PixOffset(dr.Min.X, dy)
		copy(b.Pix[di:di+rowLen], src.Pix[si:si+rowLen])
	}
}

// IsOpaque reports whether every pixel has full alpha.
func (b *Buffer) IsOpaque() bool {
	for i := 3; i < len(b.Pix); i += 4 {
		if b.Pix[i] != 0xff {
			return false
		}
	}
	return true
}

// NRGBA returns an *image.NRGBA sharing b's pixel memory.
func (b *Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   b.Rect(),
	}
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return b.Rect() }

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color { return b.RGBAAt(x, y) }
