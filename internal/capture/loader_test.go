package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestPage writes a solid-color PNG page into a temp dir and returns its path.
func createTestPage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create page file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode page: %v", err)
	}
	return path
}

func TestNewPageCache(t *testing.T) {
	cache := NewPageCache()
	if cache == nil {
		t.Fatal("NewPageCache returned nil")
	}
	if cache.pages == nil {
		t.Fatal("NewPageCache did not initialize pages map")
	}
	if cache.Len() != 0 {
		t.Errorf("new cache should be empty, got %d", cache.Len())
	}
}

func TestPageCache_Load(t *testing.T) {
	path := createTestPage(t, 40, 30, color.White)
	cache := NewPageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", img.Bounds().Dx(), img.Bounds().Dy())
	}

	again, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if again != img {
		t.Error("second Load should return the cached page")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestPageCache_LoadMissing(t *testing.T) {
	if _, err := NewPageCache().Load("/nonexistent/page.png"); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestPageCache_EvictAndClear(t *testing.T) {
	a := createTestPage(t, 10, 10, color.Black)
	b := createTestPage(t, 12, 12, color.White)
	cache := NewPageCache()

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load(%s): %v", p, err)
		}
	}

	cache.Evict(a)
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d, want 1", cache.Len())
	}
	cache.Evict("/not/cached.png")

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d, want 0", cache.Len())
	}
}

func TestPageCache_Concurrent(t *testing.T) {
	path := createTestPage(t, 20, 20, color.White)
	cache := NewPageCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestFileSource_Capture(t *testing.T) {
	first := createTestPage(t, 30, 20, color.White)
	second := createTestPage(t, 10, 10, color.Black)

	res := NewFileSource(nil, first, second).Capture(context.Background())
	if res.Err != nil || res.Cancelled {
		t.Fatalf("Capture: err=%v cancelled=%v", res.Err, res.Cancelled)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("pages: got %d, want 2", len(res.Pages))
	}

	page, ok := res.FirstPage()
	if !ok {
		t.Fatal("FirstPage should succeed")
	}
	if page.Bounds().Dx() != 30 {
		t.Errorf("first page width: got %d, want 30", page.Bounds().Dx())
	}
}

func TestFileSource_CaptureNoPathsIsCancel(t *testing.T) {
	res := NewFileSource(nil).Capture(context.Background())
	if !res.Cancelled {
		t.Error("no paths should report cancellation")
	}
	if _, ok := res.FirstPage(); ok {
		t.Error("cancelled capture has no first page")
	}
}

func TestFileSource_CaptureFailure(t *testing.T) {
	good := createTestPage(t, 10, 10, color.White)
	res := NewFileSource(nil, good, "/nonexistent/page.png").Capture(context.Background())
	if res.Err == nil {
		t.Fatal("missing page should fail the capture")
	}
	if len(res.Pages) != 0 {
		t.Error("failed capture should not return partial pages")
	}
}

func TestFileSource_CaptureContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewFileSource(nil, createTestPage(t, 5, 5, color.White)).Capture(ctx)
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", res.Err)
	}
}

func TestResult_FirstPageEmpty(t *testing.T) {
	if _, ok := (Result{Pages: []image.Image{}}).FirstPage(); ok {
		t.Error("zero pages should have no first page")
	}
	if _, ok := (Result{Err: errors.New("camera unavailable")}).FirstPage(); ok {
		t.Error("failed capture should have no first page")
	}
}

func TestLoadPageInfo(t *testing.T) {
	path := createTestPage(t, 64, 48, color.White)

	info, err := LoadPageInfo(NewPageCache(), path)
	if err != nil {
		t.Fatalf("LoadPageInfo: %v", err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes: got %d", info.FileSizeBytes)
	}
}
