package capture

import (
	"context"
	"image"
)

// Result is the outcome of a capture. Exactly one of the following holds:
// Err is non-nil (capture failed), Cancelled is true (user backed out), or
// Pages holds the captured pages, which may still be empty.
type Result struct {
	Pages     []image.Image
	Cancelled bool
	Err       error
}

// FirstPage returns the page a scan pass should recognize.
func (r Result) FirstPage() (image.Image, bool) {
	if r.Err != nil || r.Cancelled || len(r.Pages) == 0 {
		return nil, false
	}
	return r.Pages[0], true
}

// Source produces captured pages.
type Source interface {
	Capture(ctx context.Context) Result
}
