package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/wallpaper-align/internal/logging"
)

// UnsupportedFormatError is returned when an image cannot be encoded in the
// format selected by the output path, typically because the format has no
// alpha channel and the image is not opaque.
type UnsupportedFormatError struct {
	Format string
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("cannot save %s as %s: %s", e.Path, e.Format, e.Reason)
}

// Open decodes an image file, applying any EXIF orientation tag.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	return img, nil
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The MCP server keeps one cache for its lifetime so repeated tool calls on
// the same calibration screenshots skip decoding. Command-line runs open each
// input exactly once and do not use it.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached image for path, decoding it on first use.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes a single path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	HasAlpha bool `json:"has_alpha"`
}

// GetDimensions loads path through the cache and reports its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		HasAlpha: !isOpaque(img),
	}, nil
}

// Save writes img to path in the format implied by the file extension.
//
// The image is encoded into a temporary file in the destination directory and
// renamed into place, so a failed save never leaves a truncated file behind.
// If the format cannot carry alpha and the image has transparency, Save
// flattens the image to opaque RGB and retries once.
//
// Alpha: preserved when the format supports it, dropped otherwise.
func Save(img image.Image, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("failed to determine output format for %s: %w", path, err)
	}

	err = writeAtomic(img, path, format)
	var unsupported *UnsupportedFormatError
	if errors.As(err, &unsupported) {
		logging.Printf("%v; converting to RGB and retrying", unsupported)
		err = writeAtomic(Flatten(img), path, format)
	}
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Flatten returns an opaque copy of img with the colour channels unchanged.
//
// Alpha: dropped.
func Flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := PixelAt(img, x, y)
			dst.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.NRGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return dst
}

func writeAtomic(img image.Image, path string, format imaging.Format) error {
	if !supportsAlpha(format) && !isOpaque(img) {
		return &UnsupportedFormatError{
			Format: format.String(),
			Path:   path,
			Reason: "format has no alpha channel",
		}
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	tmp, err := os.CreateTemp(dir, "."+base+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, img, format); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

func supportsAlpha(format imaging.Format) bool {
	switch format {
	case imaging.PNG, imaging.TIFF, imaging.BMP:
		return true
	}
	return false
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
