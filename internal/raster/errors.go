package raster

import "github.com/pkg/errors"

// Precondition failures reported by raster and the packages built on it.
// Callers match them with errors.Is; the returned errors carry the offending
// values as context.
var (
	// ErrInvalidDimension reports a zero or negative width/height, or a
	// scale factor that would produce one.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrUnsupportedContentType reports a content type outside jpeg, png and gif.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrBufferSizeMismatch reports a pixel slice whose length is not width*height*4.
	ErrBufferSizeMismatch = errors.New("buffer size mismatch")
)

func invalidDimension(width, height int) error {
	return errors.Wrapf(ErrInvalidDimension, "%dx%d", width, height)
}
