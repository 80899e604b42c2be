package geometry

import (
	"image"
	"testing"
)

func TestNormalizedBox_Valid(t *testing.T) {
	tests := []struct {
		name string
		box  NormalizedBox
		want bool
	}{
		{"unit", NormalizedBox{0, 0, 1, 1}, true},
		{"inner", NormalizedBox{0.1, 0.8, 0.2, 0.1}, true},
		{"negative", NormalizedBox{-0.1, 0, 0.5, 0.5}, false},
		{"overflow x", NormalizedBox{0.8, 0, 0.5, 0.5}, false},
		{"overflow y", NormalizedBox{0, 0.9, 0.5, 0.2}, false},
		{"component above one", NormalizedBox{0, 0, 1.5, 0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Valid(); got != tt.want {
				t.Errorf("Valid(%v): got %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}

func TestNormalizePixelRect(t *testing.T) {
	got := NormalizePixelRect(image.Rect(10, 20, 30, 40), image.Pt(100, 200))

	if !approxEqual(got.X, 0.1) || !approxEqual(got.Y, 0.8) ||
		!approxEqual(got.Width, 0.2) || !approxEqual(got.Height, 0.1) {
		t.Errorf("NormalizePixelRect: got %v, want (0.1,0.8 0.2x0.1)", got)
	}
	if !got.Valid() {
		t.Errorf("result should be valid: %v", got)
	}
}

func TestNormalizePixelRect_ClampsAndZeroImage(t *testing.T) {
	got := NormalizePixelRect(image.Rect(-10, -10, 150, 50), image.Pt(100, 100))
	if !approxEqual(got.X, 0) || !approxEqual(got.Width, 1) || !approxEqual(got.Y, 0.5) {
		t.Errorf("clamped: got %v", got)
	}

	if zero := NormalizePixelRect(image.Rect(0, 0, 10, 10), image.Point{}); zero != (NormalizedBox{}) {
		t.Errorf("zero image: got %v, want zero box", zero)
	}
}

func TestFromTopLeftNormalized_SwappedExtents(t *testing.T) {
	a := FromTopLeftNormalized(0.1, 0.1, 0.3, 0.2)
	b := FromTopLeftNormalized(0.3, 0.2, 0.1, 0.1)
	if a != b {
		t.Errorf("swapped extents differ: %v vs %v", a, b)
	}
	if !approxEqual(a.Y, 0.8) || !approxEqual(a.Height, 0.1) {
		t.Errorf("FromTopLeftNormalized: got %v", a)
	}
}

func TestRect_Image(t *testing.T) {
	r := Rect{X: 7.8, Y: 15.8, Width: 24.4, Height: 12.4}
	want := image.Rect(7, 15, 33, 29)
	if got := r.Image(); got != want {
		t.Errorf("Image(): got %v, want %v", got, want)
	}
}

func TestSizeOf(t *testing.T) {
	got := SizeOf(image.Rect(5, 5, 105, 55))
	if got != (Size{Width: 100, Height: 50}) {
		t.Errorf("SizeOf: got %v", got)
	}
}
