package geometry

import "math"

// AspectFit returns the rectangle an image of imageSize occupies when scaled
// to fit inside container while preserving its aspect ratio. The result is
// centered on the axis that does not match (letterboxing).
//
// If either image dimension is not positive, or the container is empty, the
// container bounds are returned.
func AspectFit(imageSize, container Size) Rect {
	if imageSize.Width <= 0 || imageSize.Height <= 0 || container.Width <= 0 || container.Height <= 0 {
		return container.Bounds()
	}

	// The fitted side is set to the container dimension itself so that
	// LetterboxOf and Mapper.ToScreenUninflated see an exact match there.
	sx := container.Width / imageSize.Width
	sy := container.Height / imageSize.Height
	var w, h float64
	if sx <= sy {
		w = container.Width
		h = snap(imageSize.Height*sx, container.Height)
	} else {
		w = snap(imageSize.Width*sy, container.Width)
		h = container.Height
	}

	return Rect{
		X:      (container.Width - w) / 2,
		Y:      (container.Height - h) / 2,
		Width:  w,
		Height: h,
	}
}

// snap returns limit when v is within rounding error of it.
func snap(v, limit float64) float64 {
	if math.Abs(v-limit) <= 1e-9*limit {
		return limit
	}
	return v
}

// Letterbox describes which axis of a container is padded around the image.
type Letterbox int

const (
	// LetterboxNone means the image fills the container on both axes.
	LetterboxNone Letterbox = iota
	// LetterboxHorizontal means empty bands on the left and right.
	LetterboxHorizontal
	// LetterboxVertical means empty bands above and below.
	LetterboxVertical
)

func (l Letterbox) String() string {
	switch l {
	case LetterboxHorizontal:
		return "horizontal"
	case LetterboxVertical:
		return "vertical"
	default:
		return "none"
	}
}

// LetterboxOf classifies display inside container using the same precedence
// as Mapper.ToScreenUninflated.
func LetterboxOf(display Rect, container Size) Letterbox {
	switch {
	case container.Width-display.Width != 0:
		return LetterboxHorizontal
	case container.Height-display.Height != 0:
		return LetterboxVertical
	default:
		return LetterboxNone
	}
}
