package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

const (
	// minAccurateHeight is the page height, in pixels, below which
	// accurate-level pages are upscaled before recognition.
	minAccurateHeight = 1000

	maxUpscale = 3

	contrastChange = 0.5
)

// Preprocess prepares a page for recognition at the given level.
//
// LevelFast returns img unchanged. LevelAccurate upscales short pages (at
// most 3x, preserving aspect ratio), converts to grayscale, boosts contrast
// and sharpens.
func Preprocess(img image.Image, level Level) image.Image {
	if level != LevelAccurate {
		return img
	}

	var out image.Image = img
	if f := upscaleFactor(img.Bounds().Dy()); f > 1 {
		out = imaging.Resize(out, img.Bounds().Dx()*f, 0, imaging.Lanczos)
	}

	out = effect.Grayscale(out)
	out = adjust.Contrast(out, contrastChange)
	out = effect.Sharpen(out)
	return out
}

// upscaleFactor returns the integer factor that brings height up to
// minAccurateHeight, capped at maxUpscale.
func upscaleFactor(height int) int {
	if height <= 0 || height >= minAccurateHeight {
		return 1
	}
	f := (minAccurateHeight + height - 1) / height
	if f > maxUpscale {
		f = maxUpscale
	}
	return f
}
