package overlay

import (
	"image"
	"sync"

	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
)

// View is the in-memory presentation of a scan: page, overlays, text and
// trigger. It satisfies scan.Presenter.
type View struct {
	mu sync.RWMutex

	style     Style
	container geometry.Size

	page     image.Image
	overlays []geometry.Rect
	text     string
	trigger  bool
}

// State is a point-in-time copy of a View.
type State struct {
	HasImage       bool            `json:"has_image"`
	ImageWidth     int             `json:"image_width,omitempty"`
	ImageHeight    int             `json:"image_height,omitempty"`
	Display        geometry.Rect   `json:"display_rect"`
	Container      geometry.Size   `json:"container"`
	Letterbox      string          `json:"letterbox"`
	Overlays       []geometry.Rect `json:"overlays"`
	Text           string          `json:"text"`
	TriggerEnabled bool            `json:"trigger_enabled"`
}

// NewView creates an empty view with the trigger enabled.
func NewView(container geometry.Size, style Style) *View {
	return &View{
		style:     style,
		container: container,
		trigger:   true,
	}
}

// ShowImage replaces the page being shown.
func (v *View) ShowImage(img image.Image) {
	v.mu.Lock()
	v.page = img
	v.mu.Unlock()
}

// ClearOverlays removes every overlay box.
func (v *View) ClearOverlays() {
	v.mu.Lock()
	v.overlays = nil
	v.mu.Unlock()
}

// LoadOverlays replaces the overlay boxes.
func (v *View) LoadOverlays(boxes []geometry.Rect) {
	v.mu.Lock()
	v.overlays = append([]geometry.Rect(nil), boxes...)
	v.mu.Unlock()
}

// SetText replaces the recognized text block.
func (v *View) SetText(text string) {
	v.mu.Lock()
	v.text = text
	v.mu.Unlock()
}

// SetTriggerEnabled enables or disables the scan trigger.
func (v *View) SetTriggerEnabled(enabled bool) {
	v.mu.Lock()
	v.trigger = enabled
	v.mu.Unlock()
}

// SetContainer resizes the container. Overlays already loaded keep the
// coordinates they were mapped with.
func (v *View) SetContainer(container geometry.Size) {
	v.mu.Lock()
	v.container = container
	v.mu.Unlock()
}

// Layout returns the display rect of the current page and the container
// size. Without a page the display rect is the whole container.
func (v *View) Layout() (geometry.Rect, geometry.Size) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.layoutLocked(), v.container
}

func (v *View) layoutLocked() geometry.Rect {
	if v.page == nil {
		return v.container.Bounds()
	}
	return geometry.AspectFit(geometry.SizeOf(v.page.Bounds()), v.container)
}

// Snapshot copies the current state.
func (v *View) Snapshot() State {
	v.mu.RLock()
	defer v.mu.RUnlock()

	display := v.layoutLocked()
	s := State{
		HasImage:       v.page != nil,
		Display:        display,
		Container:      v.container,
		Letterbox:      geometry.LetterboxOf(display, v.container).String(),
		Overlays:       append([]geometry.Rect(nil), v.overlays...),
		Text:           v.text,
		TriggerEnabled: v.trigger,
	}
	if v.page != nil {
		b := v.page.Bounds()
		s.ImageWidth, s.ImageHeight = b.Dx(), b.Dy()
	}
	return s
}

// Style returns the drawing style.
func (v *View) Style() Style {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.style
}
