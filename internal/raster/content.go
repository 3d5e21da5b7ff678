package raster

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// ContentType is the encoding family a raster is rendered for. It decides
// whether alpha survives or has to be matted onto a background.
type ContentType string

const (
	JPEG ContentType = "image/jpeg"
	PNG  ContentType = "image/png"
	GIF  ContentType = "image/gif"
)

// DefaultContentType is used when no type is given.
const DefaultContentType = JPEG

// ParseContentType normalizes a MIME type or a bare format name.
// An empty string yields DefaultContentType and "jpg" is accepted as an
// alias of "jpeg".
func ParseContentType(s string) (ContentType, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return DefaultContentType, nil
	}
	t = strings.TrimPrefix(t, "image/")
	t = strings.TrimPrefix(t, ".")
	switch t {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "gif":
		return GIF, nil
	}
	return "", errors.Wrapf(ErrUnsupportedContentType, "%q", s)
}

// DetectContentType sniffs the leading magic bytes of an encoded image.
func DetectContentType(header []byte) (ContentType, error) {
	switch {
	case bytes.HasPrefix(header, []byte{0x89, 0x50, 0x4E, 0x47}):
		return PNG, nil
	case bytes.HasPrefix(header, []byte{0x47, 0x49, 0x46, 0x38}):
		return GIF, nil
	case len(header) >= 4 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		// APPn segments, or a quantization table first (streams written
		// by image/jpeg carry no APPn segment).
		switch header[3] {
		case 0xE0, 0xE1, 0xE2, 0xE3, 0xE8, 0xDB:
			return JPEG, nil
		}
	}
	n := len(header)
	if n > 4 {
		n = 4
	}
	return "", errors.Wrapf(ErrUnsupportedContentType, "unrecognized header % x", header[:n])
}

// Validate reports whether c is one of the supported types.
func (c ContentType) Validate() error {
	switch c {
	case JPEG, PNG, GIF:
		return nil
	}
	return errors.Wrapf(ErrUnsupportedContentType, "%q", string(c))
}

// HasAlpha reports whether the format can carry transparency.
func (c ContentType) HasAlpha() bool {
	return c == PNG || c == GIF
}

// Extension returns the conventional file extension, including the dot.
func (c ContentType) Extension() string {
	switch c {
	case PNG:
		return ".png"
	case GIF:
		return ".gif"
	}
	return ".jpg"
}

func (c ContentType) String() string { return string(c) }
