package pipeline

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Decoder turns encoded image bytes into an Image. *Pipeline implements it.
type Decoder interface {
	Decode(r io.Reader) (*Image, error)
}

// ImageCache provides thread-safe caching of decoded images to avoid
// redundant disk reads and decodes.
//
// Images are keyed by the exact path string given to Load. Cached images are
// shared between callers; the transforms never modify their inputs, so
// concurrent readers are safe.
//
// Cached images remain in memory until removed via Evict or Clear.
type ImageCache struct {
	decoder Decoder

	mu     sync.RWMutex
	images map[string]*Image
}

// NewImageCache creates an empty cache that decodes with decoder.
func NewImageCache(decoder Decoder) *ImageCache {
	return &ImageCache{
		decoder: decoder,
		images:  make(map[string]*Image),
	}
}

// Load returns the cached image for path, decoding it from disk on a miss.
func (c *ImageCache) Load(path string) (*Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := c.decoder.Decode(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	Logger().Debug("cached image", "path", path, "w", img.Raster.Width, "h", img.Raster.Height)
	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Image)
	c.mu.Unlock()
}

// Evict removes the image cached under path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// ContentType is sniffed from the file contents, not its extension.
	ContentType string `json:"content_type"`

	// HasAlpha reports whether the format carries transparency (PNG, GIF).
	HasAlpha bool `json:"has_alpha"`

	// Opaque reports whether every decoded pixel has alpha 255.
	Opaque bool `json:"opaque"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         img.Raster.Width,
		Height:        img.Raster.Height,
		ContentType:   string(img.ContentType),
		HasAlpha:      img.ContentType.HasAlpha(),
		Opaque:        img.Raster.IsOpaque(),
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of the image at path.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{Width: img.Raster.Width, Height: img.Raster.Height}, nil
}
