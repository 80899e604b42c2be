package geometry

import (
	"image"
	"math"
	"testing"
)

const tolerance = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func assertRect(t *testing.T, got, want Rect) {
	t.Helper()
	if !approxEqual(got.X, want.X) || !approxEqual(got.Y, want.Y) ||
		!approxEqual(got.Width, want.Width) || !approxEqual(got.Height, want.Height) {
		t.Errorf("rect: got %v, want %v", got, want)
	}
}

func TestFlipY_Involutive(t *testing.T) {
	for _, y := range []float64{0, 0.25, 0.5, 0.8, 1} {
		if got := FlipY(FlipY(y)); !approxEqual(got, y) {
			t.Errorf("FlipY(FlipY(%v)) = %v", y, got)
		}
	}
}

func TestDenormalizeRect(t *testing.T) {
	got := DenormalizeRect(NormalizedBox{X: 0.5, Y: 0.25, Width: 0.5, Height: 0.5}, 200, 80)
	assertRect(t, got, Rect{X: 100, Y: 20, Width: 100, Height: 40})
}

func TestToScreenUninflated_FullBoxEqualsDisplay(t *testing.T) {
	full := NormalizedBox{X: 0, Y: 0, Width: 1, Height: 1}
	container := Size{Width: 100, Height: 100}

	tests := []struct {
		name    string
		display Rect
	}{
		{"vertical letterbox", Rect{X: 0, Y: 10, Width: 100, Height: 80}},
		{"horizontal letterbox", Rect{X: 10, Y: 0, Width: 80, Height: 100}},
	}

	m := DefaultMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRect(t, m.ToScreenUninflated(full, tt.display, container), tt.display)
		})
	}
}

// When the image fills the container no height correction is applied, so the
// full box comes out shifted down by its own height. This is the documented
// default; CorrectFilledOrigin opts into the fix.
func TestToScreenUninflated_FilledContainerSkipsHeightCorrection(t *testing.T) {
	full := NormalizedBox{X: 0, Y: 0, Width: 1, Height: 1}
	display := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	container := Size{Width: 100, Height: 100}

	got := DefaultMapper().ToScreenUninflated(full, display, container)
	assertRect(t, got, Rect{X: 0, Y: 100, Width: 100, Height: 100})

	fixed := Mapper{Margin: DefaultMargin, CorrectFilledOrigin: true}
	assertRect(t, fixed.ToScreenUninflated(full, display, container), display)
}

func TestToScreenUninflated_SingleAxisOffset(t *testing.T) {
	box := NormalizedBox{X: 0.5, Y: 0.5, Width: 0.1, Height: 0.1}
	container := Size{Width: 100, Height: 100}

	tests := []struct {
		name    string
		display Rect
		want    Rect
	}{
		{
			// width differs: x offset applied, display.Y ignored
			"horizontal",
			Rect{X: 10, Y: 5, Width: 80, Height: 90},
			Rect{X: 50, Y: 36, Width: 8, Height: 9},
		},
		{
			// width matches, height differs: y offset applied, display.X ignored
			"vertical",
			Rect{X: 7, Y: 10, Width: 100, Height: 80},
			Rect{X: 50, Y: 42, Width: 10, Height: 8},
		},
	}

	m := DefaultMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRect(t, m.ToScreenUninflated(box, tt.display, container), tt.want)
		})
	}
}

func TestInflate(t *testing.T) {
	m := DefaultMapper()
	in := Rect{X: 1, Y: 2, Width: 3, Height: 4}
	got := m.Inflate(in)

	if !approxEqual(got.Width-in.Width, 2*DefaultMargin) || !approxEqual(got.Height-in.Height, 2*DefaultMargin) {
		t.Errorf("size delta: got (%v,%v), want %v on both", got.Width-in.Width, got.Height-in.Height, 2*DefaultMargin)
	}
	if !approxEqual(in.X-got.X, DefaultMargin) || !approxEqual(in.Y-got.Y, DefaultMargin) {
		t.Errorf("origin delta: got (%v,%v), want %v on both", in.X-got.X, in.Y-got.Y, DefaultMargin)
	}
	assertRect(t, got, Rect{X: -1.2, Y: -0.2, Width: 7.4, Height: 8.4})
}

func TestInflate_ZeroMargin(t *testing.T) {
	in := Rect{X: 1, Y: 2, Width: 3, Height: 4}
	if got := (Mapper{}).Inflate(in); got != in {
		t.Errorf("zero margin changed rect: got %v, want %v", got, in)
	}
}

func TestToScreen_EndToEnd(t *testing.T) {
	display := Rect{X: 0, Y: 10, Width: 100, Height: 80}
	container := Size{Width: 100, Height: 100}
	box := NormalizedBox{X: 0.1, Y: 0.8, Width: 0.2, Height: 0.1}

	m := DefaultMapper()

	// y' = 0.2 -> scaled (10, 16, 20, 8) -> +10 -8 on y -> (10, 18, 20, 8)
	assertRect(t, m.ToScreenUninflated(box, display, container), Rect{X: 10, Y: 18, Width: 20, Height: 8})
	assertRect(t, m.ToScreen(box, display, container), Rect{X: 7.8, Y: 15.8, Width: 24.4, Height: 12.4})
}

func TestToScreenAll(t *testing.T) {
	display := Rect{X: 0, Y: 10, Width: 100, Height: 80}
	container := Size{Width: 100, Height: 100}
	boxes := []NormalizedBox{
		{X: 0.1, Y: 0.8, Width: 0.2, Height: 0.1},
		{X: 0, Y: 0, Width: 1, Height: 1},
	}

	got := DefaultMapper().ToScreenAll(boxes, display, container)
	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2", len(got))
	}
	assertRect(t, got[0], Rect{X: 7.8, Y: 15.8, Width: 24.4, Height: 12.4})
	assertRect(t, got[1], Rect{X: -2.2, Y: 7.8, Width: 104.4, Height: 84.4})

	if empty := DefaultMapper().ToScreenAll(nil, display, container); len(empty) != 0 {
		t.Errorf("nil boxes: got %d rects", len(empty))
	}
}

func TestPixelRoundTrip(t *testing.T) {
	// A pixel box normalized and mapped back onto a display the size of the
	// image lands where it started once the filled-origin fix is applied.
	imgSize := image.Pt(100, 200)
	px := image.Rect(10, 20, 30, 40)

	box := NormalizePixelRect(px, imgSize)
	m := Mapper{CorrectFilledOrigin: true}
	display := Rect{Width: 100, Height: 200}

	got := m.ToScreen(box, display, display.Size())
	assertRect(t, got, Rect{X: 10, Y: 20, Width: 20, Height: 20})
}
