package geometry

import (
	"fmt"
	"image"
	"math"
)

// NormalizedBox is a rectangle expressed as fractions of the source image
// size, with the origin at the bottom-left corner.
type NormalizedBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether every component lies in [0,1] and the box does not
// extend past the unit square.
func (b NormalizedBox) Valid() bool {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return b.X+b.Width <= 1+epsilon && b.Y+b.Height <= 1+epsilon
}

func (b NormalizedBox) String() string {
	return fmt.Sprintf("(%.4f,%.4f %.4fx%.4f)", b.X, b.Y, b.Width, b.Height)
}

// Rect is a rectangle in view coordinates (origin top-left).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Image rounds the rectangle outward to integer pixel bounds.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.MaxX())),
		int(math.Ceil(r.MaxY())),
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f,%.2f %.2fx%.2f)", r.X, r.Y, r.Width, r.Height)
}

// Size is a width/height pair in view units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the rectangle at the origin with this size.
func (s Size) Bounds() Rect { return Rect{Width: s.Width, Height: s.Height} }

// SizeOf returns the dimensions of an image.Rectangle.
func SizeOf(r image.Rectangle) Size {
	return Size{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

const epsilon = 1e-9

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NormalizePixelRect converts a top-left-origin pixel rectangle inside an
// image of the given size into a bottom-left-origin NormalizedBox. The result
// is clamped to the unit square. A zero-sized image yields the zero box.
func NormalizePixelRect(r image.Rectangle, imageSize image.Point) NormalizedBox {
	if imageSize.X <= 0 || imageSize.Y <= 0 {
		return NormalizedBox{}
	}
	w := float64(imageSize.X)
	h := float64(imageSize.Y)
	r = r.Canon()
	return FromTopLeftNormalized(
		float64(r.Min.X)/w,
		float64(r.Min.Y)/h,
		float64(r.Max.X)/w,
		float64(r.Max.Y)/h,
	)
}

// FromTopLeftNormalized converts normalized top-left-origin extents (as
// reported by document layout services) into a bottom-left-origin box.
func FromTopLeftNormalized(minX, minY, maxX, maxY float64) NormalizedBox {
	minX, maxX = clamp01(math.Min(minX, maxX)), clamp01(math.Max(minX, maxX))
	minY, maxY = clamp01(math.Min(minY, maxY)), clamp01(math.Max(minY, maxY))
	return NormalizedBox{
		X:      minX,
		Y:      FlipY(maxY),
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}
