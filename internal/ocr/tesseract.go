package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
)

// Tesseract recognizes text with the local Tesseract engine.
//
// A new gosseract client is created for every call, so a single Tesseract
// value may be shared, though the scan worker only ever runs one pass at a
// time.
type Tesseract struct {
	// TessdataPrefix overrides the language data directory. Empty uses the
	// library default (TESSDATA_PREFIX or the compiled-in path).
	TessdataPrefix string
}

// NewTesseract creates a Tesseract recognizer.
func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{TessdataPrefix: tessdataPrefix}
}

// Name implements Recognizer.
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs Tesseract over img and returns one observation per text line.
//
// Line boxes come from Tesseract's RIL_TEXTLINE iterator in pixel space and
// are converted to normalized, bottom-left-origin boxes relative to the page
// that was actually recognized (after Preprocess), which keeps them valid for
// the original page because preprocessing only scales uniformly.
//
// Lines with empty text or an empty pixel box are skipped. Confidence is
// scaled from Tesseract's 0-100 range to 0-1.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, cfg Config) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := Preprocess(img, cfg.Level)

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(cfg.languages()...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	size := page.Bounds().Size()
	observations := make([]Observation, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		ob, ok := lineObservation(text, box.Confidence, box.Box, size)
		if !ok {
			continue
		}
		observations = append(observations, ob)
	}

	return filterConfidence(observations, cfg.MinConfidence), nil
}

// lineObservation builds a single-candidate observation from a pixel box.
// It reports false for a degenerate box.
func lineObservation(text string, confidence float64, px image.Rectangle, size image.Point) (Observation, bool) {
	if px.Empty() || size.X <= 0 || size.Y <= 0 {
		return Observation{}, false
	}
	nb := geometry.NormalizePixelRect(px, size)
	c := Candidate{
		Text:       text,
		Confidence: confidence / 100.0,
		Box:        &nb,
	}
	return Observation{Candidates: []Candidate{c}}, true
}

// Info describes the availability of a recognition engine.
type Info struct {
	Available bool   `json:"available"`
	Engine    string `json:"engine"`
	Version   string `json:"version,omitempty"`
	Processor string `json:"processor,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Info reports the linked Tesseract version.
func (t *Tesseract) Info() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	if version == "" {
		return Info{Engine: t.Name(), Error: "tesseract returned no version"}
	}
	return Info{Available: true, Engine: t.Name(), Version: version}
}
