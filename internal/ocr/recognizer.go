package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
)

// ErrUnknownEngine is returned by NewRecognizer for an unsupported engine name.
var ErrUnknownEngine = errors.New("unknown recognition engine")

// Level selects the speed/quality trade-off of a recognition pass.
type Level string

const (
	// LevelFast skips preprocessing. Only used when configured explicitly.
	LevelFast Level = "fast"
	// LevelAccurate is the highest-quality setting and the default.
	LevelAccurate Level = "accurate"
)

// ParseLevel converts a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelFast:
		return LevelFast, nil
	case LevelAccurate, "":
		return LevelAccurate, nil
	default:
		return "", fmt.Errorf("invalid recognition level %q (want fast or accurate)", s)
	}
}

// Config is the per-pass recognition configuration. Treat it as immutable:
// build it once and pass it to each Recognize call.
type Config struct {
	Level         Level    `json:"level"`
	Languages     []string `json:"languages"`
	MinConfidence float64  `json:"min_confidence"`
}

// DefaultConfig returns the accurate, English-only configuration.
func DefaultConfig() Config {
	return Config{
		Level:     LevelAccurate,
		Languages: []string{"eng"},
	}
}

// languages returns a copy of the configured languages, defaulting to English.
func (c Config) languages() []string {
	if len(c.Languages) == 0 {
		return []string{"eng"}
	}
	return append([]string(nil), c.Languages...)
}

// Candidate is one recognition hypothesis for a line of text.
type Candidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`

	// Box is the normalized bounding box of the whole candidate string, or
	// nil when the engine could not resolve it.
	Box *geometry.NormalizedBox `json:"box,omitempty"`
}

// Observation is a recognized text region with its candidates ordered from
// most to least likely.
type Observation struct {
	Candidates []Candidate `json:"candidates"`
}

// TopCandidate returns the most likely candidate, if any.
func (o Observation) TopCandidate() (Candidate, bool) {
	if len(o.Candidates) == 0 {
		return Candidate{}, false
	}
	return o.Candidates[0], true
}

// Recognizer is a text-recognition engine.
type Recognizer interface {
	// Name identifies the engine (e.g. "tesseract").
	Name() string

	// Recognize returns the text regions found in img. Implementations may
	// block for a long time and should be called off the interaction queue.
	Recognize(ctx context.Context, img image.Image, cfg Config) ([]Observation, error)
}

// EngineOptions carries engine-specific settings for NewRecognizer.
type EngineOptions struct {
	TessdataPrefix string
	DocumentAI     DocumentAIConfig
}

// NewRecognizer returns the engine registered under name.
func NewRecognizer(name string, opts EngineOptions) (Recognizer, error) {
	switch strings.ToLower(name) {
	case "", "tesseract":
		return NewTesseract(opts.TessdataPrefix), nil
	case "docai", "documentai":
		if err := opts.DocumentAI.Validate(); err != nil {
			return nil, err
		}
		return NewDocumentAI(opts.DocumentAI), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
}

// filterConfidence drops observations whose top candidate is below min.
// Observations without candidates are kept so callers can report them.
func filterConfidence(obs []Observation, min float64) []Observation {
	if min <= 0 {
		return obs
	}
	out := obs[:0]
	for _, o := range obs {
		if top, ok := o.TopCandidate(); ok && top.Confidence < min {
			continue
		}
		out = append(out, o)
	}
	return out
}
