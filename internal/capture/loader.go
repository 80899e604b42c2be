package capture

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// PageCache provides thread-safe caching of decoded pages keyed by path.
//
// Pages are decoded with imaging.Open and EXIF auto-orientation, so a JPEG
// that a camera stored rotated comes back upright. The cache keeps pages
// until Evict or Clear is called.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]image.Image
}

// NewPageCache creates an empty page cache.
func NewPageCache() *PageCache {
	return &PageCache{
		pages: make(map[string]image.Image),
	}
}

// Load returns the page at path, decoding it on first use.
//
// Supported formats are those of disintegration/imaging: JPEG, PNG, GIF,
// TIFF and BMP.
func (c *PageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.pages[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", path, err)
	}

	c.mu.Lock()
	c.pages[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// Clear removes all pages from the cache.
func (c *PageCache) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a single page from the cache.
func (c *PageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.pages, path)
	c.mu.Unlock()
}

// FileSource captures a document whose pages are image files.
type FileSource struct {
	Paths []string
	Cache *PageCache
}

// NewFileSource returns a FileSource backed by cache. A nil cache gets a
// private one.
func NewFileSource(cache *PageCache, paths ...string) *FileSource {
	if cache == nil {
		cache = NewPageCache()
	}
	return &FileSource{Paths: paths, Cache: cache}
}

// Capture loads every path as a page. No paths means the user cancelled;
// any page that fails to load fails the whole capture.
func (s *FileSource) Capture(ctx context.Context) Result {
	if len(s.Paths) == 0 {
		return Result{Cancelled: true}
	}

	pages := make([]image.Image, 0, len(s.Paths))
	for _, p := range s.Paths {
		if err := ctx.Err(); err != nil {
			return Result{Err: err}
		}
		img, err := s.Cache.Load(p)
		if err != nil {
			return Result{Err: err}
		}
		pages = append(pages, img)
	}
	return Result{Pages: pages}
}

// PageInfo contains metadata about a page file.
type PageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadPageInfo loads the page at path through cache and describes it.
// Width and Height are those of the oriented page.
func LoadPageInfo(cache *PageCache, path string) (*PageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	} else if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		format = strings.ToLower(ext)
	}

	bounds := img.Bounds()
	return &PageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
