package overlay

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
)

func solidPage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodeResult(t *testing.T, res *RenderResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func rgb(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FFA500", color.NRGBA{255, 165, 0, 255}, false},
		{"ffa500", color.NRGBA{255, 165, 0, 255}, false},
		{"#FF000080", color.NRGBA{255, 0, 0, 128}, false},
		{"", color.NRGBA{}, true},
		{"#FFF", color.NRGBA{}, true},
		{"#GG0000", color.NRGBA{}, true},
		{"#FF0000ZZ", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlend(t *testing.T) {
	opaque := color.NRGBA{10, 20, 30, 255}
	if got := blend(color.White, opaque); got != opaque {
		t.Errorf("opaque color should replace the pixel, got %v", got)
	}

	r, g, b := rgb(blend(color.White, color.NRGBA{255, 0, 0, 128}))
	if r != 255 || g < 120 || g > 135 || b < 120 || b > 135 {
		t.Errorf("half red over white: got (%d,%d,%d)", r, g, b)
	}
}

func TestStyleValidate(t *testing.T) {
	if err := DefaultStyle().Validate(); err != nil {
		t.Errorf("default style invalid: %v", err)
	}

	bad := []Style{
		{Color: "orange", BorderWidth: 2},
		{Color: "#FFA500", BorderWidth: 0},
		{Color: "#FFA500", BorderWidth: 2, CornerRadius: -1},
		{Color: "#FFA500", BorderWidth: 2, TextPanelHeight: -5},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("style %d should be invalid: %+v", i, s)
		}
	}
}

func TestView_Layout(t *testing.T) {
	v := NewView(geometry.Size{Width: 100, Height: 100}, DefaultStyle())

	display, container := v.Layout()
	if display != (geometry.Rect{Width: 100, Height: 100}) {
		t.Errorf("empty view display: got %v", display)
	}
	if container != (geometry.Size{Width: 100, Height: 100}) {
		t.Errorf("container: got %v", container)
	}

	v.ShowImage(solidPage(200, 100, color.Black))
	display, _ = v.Layout()
	if display != (geometry.Rect{X: 0, Y: 25, Width: 100, Height: 50}) {
		t.Errorf("wide page display: got %v", display)
	}

	v.SetContainer(geometry.Size{Width: 300, Height: 100})
	display, _ = v.Layout()
	if display != (geometry.Rect{X: 50, Y: 0, Width: 200, Height: 100}) {
		t.Errorf("after resize: got %v", display)
	}
}

func TestView_LayoutPhonePortraitPage(t *testing.T) {
	v := NewView(geometry.Size{Width: 390, Height: 844}, DefaultStyle())
	v.ShowImage(solidPage(141, 199, color.White))

	display, container := v.Layout()
	if got := geometry.LetterboxOf(display, container); got != geometry.LetterboxVertical {
		t.Fatalf("letterbox: got %v, want vertical (display %v)", got, display)
	}

	full := geometry.Mapper{}.ToScreenUninflated(geometry.NormalizedBox{Width: 1, Height: 1}, display, container)
	if math.Abs(full.Y-display.Y) > 1e-9 || math.Abs(full.Height-display.Height) > 1e-9 {
		t.Errorf("full-page box %v should cover display %v", full, display)
	}
}

func TestView_OverlaysAndText(t *testing.T) {
	v := NewView(geometry.Size{Width: 100, Height: 100}, DefaultStyle())
	if !v.Snapshot().TriggerEnabled {
		t.Error("new view should have the trigger enabled")
	}

	first := []geometry.Rect{{X: 1, Y: 1, Width: 5, Height: 5}, {X: 10, Y: 10, Width: 5, Height: 5}}
	v.LoadOverlays(first)
	first[0].X = 99

	v.LoadOverlays([]geometry.Rect{{X: 2, Y: 2, Width: 3, Height: 3}})
	v.SetText("line\n")
	v.SetTriggerEnabled(false)

	s := v.Snapshot()
	if len(s.Overlays) != 1 || s.Overlays[0].X != 2 {
		t.Errorf("LoadOverlays should replace prior boxes, got %v", s.Overlays)
	}
	if s.Text != "line\n" || s.TriggerEnabled {
		t.Errorf("unexpected state: %+v", s)
	}

	s.Overlays[0].X = 50
	if v.Snapshot().Overlays[0].X != 2 {
		t.Error("Snapshot should return a copy")
	}

	v.ClearOverlays()
	if n := len(v.Snapshot().Overlays); n != 0 {
		t.Errorf("ClearOverlays left %d boxes", n)
	}
}

func TestView_SnapshotImage(t *testing.T) {
	v := NewView(geometry.Size{Width: 100, Height: 100}, DefaultStyle())
	if v.Snapshot().HasImage {
		t.Error("empty view reports an image")
	}

	v.ShowImage(solidPage(40, 80, color.White))
	s := v.Snapshot()
	if !s.HasImage || s.ImageWidth != 40 || s.ImageHeight != 80 {
		t.Errorf("image info: %+v", s)
	}
	if s.Letterbox != "horizontal" {
		t.Errorf("Letterbox: got %q, want horizontal", s.Letterbox)
	}
}

func TestRender(t *testing.T) {
	v := NewView(geometry.Size{Width: 100, Height: 100}, DefaultStyle())
	v.ShowImage(solidPage(100, 50, color.RGBA{255, 0, 0, 255}))
	v.LoadOverlays([]geometry.Rect{{X: 10, Y: 40, Width: 30, Height: 20}})

	img, err := v.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Fatalf("bounds: got %v", img.Bounds())
	}

	tests := []struct {
		name    string
		x, y    int
		r, g, b uint8
	}{
		{"letterbox band above", 5, 5, 255, 255, 255},
		{"letterbox band below", 50, 90, 255, 255, 255},
		{"page interior", 80, 50, 255, 0, 0},
		{"inside overlay", 20, 50, 255, 0, 0},
		{"overlay top edge", 20, 40, 255, 165, 0},
		{"overlay left edge", 10, 50, 255, 165, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := rgb(img.At(tt.x, tt.y))
			if absDiff(r, tt.r) > 10 || absDiff(g, tt.g) > 10 || absDiff(b, tt.b) > 10 {
				t.Errorf("pixel (%d,%d): got (%d,%d,%d), want (%d,%d,%d)",
					tt.x, tt.y, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestRender_TextPanel(t *testing.T) {
	style := DefaultStyle()
	style.TextPanelHeight = 40
	v := NewView(geometry.Size{Width: 120, Height: 60}, style)
	v.SetText("HELLO\nWORLD\n")

	img, err := v.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dy() != 100 {
		t.Fatalf("height: got %d, want 100", img.Bounds().Dy())
	}

	dark := 0
	for y := 60; y < 100; y++ {
		for x := 0; x < 120; x++ {
			if r, _, _ := rgb(img.At(x, y)); r < 100 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("text panel has no text pixels")
	}
}

func TestRender_InvalidContainer(t *testing.T) {
	v := NewView(geometry.Size{}, DefaultStyle())
	if _, err := v.Render(); err == nil {
		t.Error("Render should fail for an empty container")
	}
}

func TestRenderPNG(t *testing.T) {
	v := NewView(geometry.Size{Width: 64, Height: 48}, DefaultStyle())
	res, err := v.RenderPNG(DefaultStyle())
	if err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	if res.MimeType != "image/png" || res.Width != 64 || res.Height != 48 {
		t.Errorf("unexpected result: %dx%d %s", res.Width, res.Height, res.MimeType)
	}
	if b := decodeResult(t, res).Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("decoded bounds: %v", b)
	}
}

func TestCropRegion(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			if y < 25 {
				page.Set(x, y, color.RGBA{0, 255, 0, 255})
			} else {
				page.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}

	// upper half in bottom-left coordinates
	res, err := CropRegion(page, geometry.NormalizedBox{X: 0, Y: 0.5, Width: 1, Height: 0.5}, 1)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if res.Width != 100 || res.Height != 25 {
		t.Fatalf("size: got %dx%d, want 100x25", res.Width, res.Height)
	}
	if r, g, b := rgb(decodeResult(t, res).At(50, 12)); r != 0 || g != 255 || b != 0 {
		t.Errorf("upper half should be green, got (%d,%d,%d)", r, g, b)
	}

	res, err = CropRegion(page, geometry.NormalizedBox{X: 0.5, Y: 0, Width: 0.5, Height: 0.5}, 2)
	if err != nil {
		t.Fatalf("scaled CropRegion failed: %v", err)
	}
	if res.Width != 100 || res.Height != 50 {
		t.Errorf("scaled size: got %dx%d, want 100x50", res.Width, res.Height)
	}

	if _, err := CropRegion(page, geometry.NormalizedBox{X: 0.8, Y: 0, Width: 0.5, Height: 0.5}, 1); err == nil {
		t.Error("expected error for a box past the unit square")
	}
	if _, err := CropRegion(page, geometry.NormalizedBox{X: 0.5, Y: 0.5}, 1); err == nil {
		t.Error("expected error for an empty box")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
