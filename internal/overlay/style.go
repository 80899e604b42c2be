package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Style controls how overlay boxes and the text panel are drawn.
type Style struct {
	// Color is the outline color as "#RRGGBB" or "#RRGGBBAA".
	Color string `json:"color" yaml:"color"`

	BorderWidth  float64 `json:"border_width" yaml:"border_width"`
	CornerRadius float64 `json:"corner_radius" yaml:"corner_radius"`

	// TextPanelHeight is the height in pixels of the text panel rendered
	// below the container. Zero disables the panel.
	TextPanelHeight int `json:"text_panel_height" yaml:"text_panel_height"`
}

// DefaultStyle returns orange 2px outlines with 2px corners and no text panel.
func DefaultStyle() Style {
	return Style{
		Color:        "#FFA500",
		BorderWidth:  2,
		CornerRadius: 2,
	}
}

// Validate checks the color and dimensions.
func (s Style) Validate() error {
	if _, err := parseColor(s.Color); err != nil {
		return err
	}
	if s.BorderWidth <= 0 {
		return fmt.Errorf("border width must be positive, got %v", s.BorderWidth)
	}
	if s.CornerRadius < 0 {
		return fmt.Errorf("corner radius must not be negative, got %v", s.CornerRadius)
	}
	if s.TextPanelHeight < 0 {
		return fmt.Errorf("text panel height must not be negative, got %d", s.TextPanelHeight)
	}
	return nil
}

// parseColor parses "#RRGGBB" or "#RRGGBBAA". The alpha byte, when present,
// is returned in the A channel unpremultiplied.
func parseColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	alpha := uint8(255)
	switch len(hex) {
	case 7:
	case 9:
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #RRGGBB or #RRGGBBAA", hex)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// blend composites src over dst using src's alpha.
func blend(dst color.Color, src color.NRGBA) color.Color {
	if src.A == 255 {
		return src
	}
	under, ok := colorful.MakeColor(dst)
	if !ok {
		return src
	}
	over := colorful.Color{R: float64(src.R) / 255, G: float64(src.G) / 255, B: float64(src.B) / 255}
	return under.BlendRgb(over, float64(src.A)/255).Clamped()
}
