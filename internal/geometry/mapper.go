package geometry

// DefaultMargin is the amount, in view units, every screen box is enlarged
// by on each side.
const DefaultMargin = 2.2

// Mapper converts normalized recognition boxes into screen boxes for an
// aspect-fit presentation. The zero value maps without inflation.
type Mapper struct {
	// Margin is added on every side of the converted rectangle.
	Margin float64 `json:"margin" yaml:"margin"`

	// CorrectFilledOrigin applies the y-origin height correction even when
	// the image fills the container on both axes. Off by default, which
	// keeps boxes anchored at their bottom edge in that case.
	CorrectFilledOrigin bool `json:"correct_filled_origin" yaml:"correct_filled_origin"`
}

// DefaultMapper returns a Mapper with DefaultMargin and the filled-container
// behavior left uncorrected.
func DefaultMapper() Mapper {
	return Mapper{Margin: DefaultMargin}
}

// FlipY converts a y coordinate between bottom-left and top-left origin in
// the unit square. Applying it twice returns the input.
func FlipY(y float64) float64 {
	return 1 - y
}

// DenormalizeRect scales a unit-square rectangle to a width x height space.
func DenormalizeRect(b NormalizedBox, width, height float64) Rect {
	return Rect{
		X:      b.X * width,
		Y:      b.Y * height,
		Width:  b.Width * width,
		Height: b.Height * height,
	}
}

// ToScreenUninflated maps box into view coordinates without applying the
// margin.
//
// display is the rectangle the image occupies inside a container of the
// given size. Only one letterbox axis is ever offset: horizontal when the
// container is wider than display, otherwise vertical when it is taller.
func (m Mapper) ToScreenUninflated(box NormalizedBox, display Rect, container Size) Rect {
	box.Y = FlipY(box.Y)
	r := DenormalizeRect(box, display.Width, display.Height)

	switch {
	case container.Width-display.Width != 0:
		r.X += display.X
		r.Y -= r.Height
	case container.Height-display.Height != 0:
		r.Y += display.Y
		r.Y -= r.Height
	case m.CorrectFilledOrigin:
		r.Y -= r.Height
	}
	return r
}

// Inflate enlarges r by the margin on every side.
func (m Mapper) Inflate(r Rect) Rect {
	return Rect{
		X:      r.X - m.Margin,
		Y:      r.Y - m.Margin,
		Width:  r.Width + 2*m.Margin,
		Height: r.Height + 2*m.Margin,
	}
}

// ToScreen maps box into view coordinates and inflates it by the margin.
func (m Mapper) ToScreen(box NormalizedBox, display Rect, container Size) Rect {
	return m.Inflate(m.ToScreenUninflated(box, display, container))
}

// ToScreenAll maps every box with ToScreen.
func (m Mapper) ToScreenAll(boxes []NormalizedBox, display Rect, container Size) []Rect {
	out := make([]Rect, len(boxes))
	for i, b := range boxes {
		out[i] = m.ToScreen(b, display, container)
	}
	return out
}
