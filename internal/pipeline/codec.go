package pipeline

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"

	imgcodec "github.com/disintegration/imaging"
	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/pkg/errors"
)

// Decode reads an encoded PNG, JPEG or GIF image. The content type is
// sniffed from the leading bytes, not taken from any file name.
func (p *Pipeline) Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return p.DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory byte slice.
func (p *Pipeline) DecodeBytes(data []byte) (*Image, error) {
	ct, err := raster.DetectContentType(data)
	if err != nil {
		return nil, err
	}
	// Reject from the header alone, before the pixels are allocated.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	if err := p.checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	decoded, err := imgcodec.Decode(bytes.NewReader(data), imgcodec.AutoOrientation(p.settings.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	// Orientation may have swapped the axes.
	b := decoded.Bounds()
	if err := p.checkDimensions(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	buf, err := raster.FromImage(decoded)
	if err != nil {
		return nil, err
	}
	return &Image{Raster: buf, ContentType: ct}, nil
}

func (p *Pipeline) checkDimensions(w, h int) error {
	if m := p.settings.MaxDimension; m > 0 && (w > m || h > m) {
		return errors.Wrapf(raster.ErrInvalidDimension, "%dx%d exceeds limit %d", w, h, m)
	}
	return nil
}

// DecodeFile reads and decodes the image at path.
func (p *Pipeline) DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return p.DecodeBytes(data)
}

// Encode writes res in its content type.
func Encode(w io.Writer, res *Result) error {
	if res == nil || res.Raster == nil {
		return errors.Wrap(raster.ErrInvalidDimension, "no result")
	}
	if err := res.Raster.Validate(); err != nil {
		return err
	}
	img := res.Raster.NRGBA()

	var err error
	switch res.ContentType {
	case raster.JPEG:
		q := res.Quality
		if q == 0 {
			q = 100
		}
		err = imgcodec.Encode(w, img, imgcodec.JPEG, imgcodec.JPEGQuality(q))
	case raster.PNG:
		err = imgcodec.Encode(w, img, imgcodec.PNG)
	case raster.GIF:
		err = imgcodec.Encode(w, img, imgcodec.GIF)
	default:
		return res.ContentType.Validate()
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", res.ContentType, err)
	}
	return nil
}

// EncodedImage is an encoded result ready to hand to a client.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
	SizeBytes   int    `json:"size_bytes"`
}

// EncodeBase64 encodes res and returns it as base64 text.
func EncodeBase64(res *Result) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, res); err != nil {
		return nil, err
	}
	return &EncodedImage{
		Width:       res.Raster.Width,
		Height:      res.Raster.Height,
		ContentType: string(res.ContentType),
		MimeType:    string(res.ContentType),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		SizeBytes:   buf.Len(),
	}, nil
}

// WriteFile encodes res to path, replacing any existing file.
func WriteFile(path string, res *Result) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, res); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	return &EncodedImage{
		Width:       res.Raster.Width,
		Height:      res.Raster.Height,
		ContentType: string(res.ContentType),
		MimeType:    string(res.ContentType),
		OutputPath:  path,
		SizeBytes:   buf.Len(),
	}, nil
}
