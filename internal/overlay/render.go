package overlay

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
)

const (
	panelPadding = 4
	lineSpacing  = 2
)

// RenderResult is an encoded rendering.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Render draws the current view with the view's style.
func (v *View) Render() (*image.RGBA, error) {
	return v.RenderStyled(v.Style())
}

// RenderStyled draws the current view with style instead of the view's own.
func (v *View) RenderStyled(style Style) (*image.RGBA, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	stroke, err := parseColor(style.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to parse overlay color: %w", err)
	}

	cw := int(math.Ceil(v.container.Width))
	ch := int(math.Ceil(v.container.Height))
	if cw <= 0 || ch <= 0 {
		return nil, fmt.Errorf("container %vx%v has no area", v.container.Width, v.container.Height)
	}

	panel := max(style.TextPanelHeight, 0)
	canvas := image.NewRGBA(image.Rect(0, 0, cw, ch+panel))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	if v.page != nil {
		display := v.layoutLocked().Image()
		if display.Dx() > 0 && display.Dy() > 0 {
			fitted := imaging.Resize(v.page, display.Dx(), display.Dy(), imaging.Lanczos)
			draw.Draw(canvas, display, fitted, image.Point{}, draw.Over)
		}
	}

	for _, r := range v.overlays {
		strokeRoundedRect(canvas, r, style.BorderWidth, style.CornerRadius, stroke)
	}

	if panel > 0 {
		drawTextPanel(canvas, image.Rect(0, ch, cw, ch+panel), v.text)
	}

	return canvas, nil
}

// RenderPNG renders the view with style and encodes it.
func (v *View) RenderPNG(style Style) (*RenderResult, error) {
	img, err := v.RenderStyled(style)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*RenderResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropRegion cuts a normalized (bottom-left origin) box out of page,
// optionally scaling the crop.
func CropRegion(page image.Image, box geometry.NormalizedBox, scale float64) (*RenderResult, error) {
	if !box.Valid() {
		return nil, fmt.Errorf("box %s is not a normalized rectangle", box)
	}

	b := page.Bounds()
	px := geometry.DenormalizeRect(geometry.NormalizedBox{
		X:      box.X,
		Y:      geometry.FlipY(box.Y + box.Height),
		Width:  box.Width,
		Height: box.Height,
	}, float64(b.Dx()), float64(b.Dy())).Image().Add(b.Min).Intersect(b)

	if px.Empty() {
		return nil, fmt.Errorf("box %s covers no pixels of a %dx%d page", box, b.Dx(), b.Dy())
	}

	cropped := imaging.Crop(page, px)
	if scale != 1.0 && scale > 0 {
		w := int(float64(cropped.Bounds().Dx()) * scale)
		h := int(float64(cropped.Bounds().Dy()) * scale)
		if w > 0 && h > 0 {
			cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
		}
	}
	return EncodePNG(cropped)
}

// strokeRoundedRect outlines r, centering the stroke on the rectangle edge.
func strokeRoundedRect(dst *image.RGBA, r geometry.Rect, width, radius float64, c color.NRGBA) {
	if r.Width <= 0 || r.Height <= 0 || width <= 0 {
		return
	}
	half := width / 2
	radius = math.Min(radius, math.Min(r.Width, r.Height)/2)

	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	hx, hy := r.Width/2-radius, r.Height/2-radius

	area := geometry.Rect{X: r.X - half, Y: r.Y - half, Width: r.Width + width, Height: r.Height + width}.
		Image().Intersect(dst.Bounds())

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			qx := math.Abs(float64(x)+0.5-cx) - hx
			qy := math.Abs(float64(y)+0.5-cy) - hy
			outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
			inside := math.Min(math.Max(qx, qy), 0)
			d := outside + inside - radius
			if math.Abs(d) <= half {
				dst.Set(x, y, blend(dst.At(x, y), c))
			}
		}
	}
}

// drawTextPanel writes text into area one line per row, clipping lines that
// do not fit.
func drawTextPanel(dst *image.RGBA, area image.Rectangle, text string) {
	draw.Draw(dst, area, image.NewUniform(color.RGBA{245, 245, 245, 255}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
	}

	lineHeight := face.Height + lineSpacing
	y := area.Min.Y + panelPadding + face.Ascent
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if y+face.Descent > area.Max.Y-panelPadding {
			break
		}
		d.Dot = fixed.P(area.Min.X+panelPadding, y)
		d.DrawString(line)
		y += lineHeight
	}
}
