package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
)

// DocumentAIConfig identifies the Document AI OCR processor to call.
type DocumentAIConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Location        string `json:"location" yaml:"location"`
	ProcessorID     string `json:"processor_id" yaml:"processor_id"`
	CredentialsFile string `json:"credentials_file,omitempty" yaml:"credentials_file"`
}

// Validate reports missing processor settings.
func (c DocumentAIConfig) Validate() error {
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if c.Location == "" {
		missing = append(missing, "location")
	}
	if c.ProcessorID == "" {
		missing = append(missing, "processor_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("document ai config missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c DocumentAIConfig) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// DocumentAI recognizes text with a Google Cloud Document AI OCR processor.
// Config.Level is ignored; the processor always runs at full quality.
type DocumentAI struct {
	cfg DocumentAIConfig
}

// NewDocumentAI creates a Document AI recognizer.
func NewDocumentAI(cfg DocumentAIConfig) *DocumentAI {
	return &DocumentAI{cfg: cfg}
}

// Name implements Recognizer.
func (d *DocumentAI) Name() string { return "docai" }

// Info reports the configured processor. The service is not contacted, so
// Available only means the settings are complete.
func (d *DocumentAI) Info() Info {
	info := Info{Engine: d.Name(), Processor: d.cfg.processorName()}
	if err := d.cfg.Validate(); err != nil {
		info.Error = err.Error()
		return info
	}
	info.Available = true
	return info
}

// Recognize uploads img as PNG and returns one observation per page line.
func (d *DocumentAI) Recognize(ctx context.Context, img image.Image, cfg Config) ([]Observation, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", d.cfg.Location)),
	}
	if d.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(d.cfg.CredentialsFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	req := &documentaipb.ProcessRequest{
		Name: d.cfg.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  buf.Bytes(),
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}

	obs, err := observationsFromDocument(resp.GetDocument())
	if err != nil {
		return nil, err
	}
	return filterConfidence(obs, cfg.MinConfidence), nil
}

// observationsFromDocument converts the lines of the first page of doc.
func observationsFromDocument(doc *documentaipb.Document) ([]Observation, error) {
	if doc == nil {
		return nil, errors.New("document ai returned no document")
	}
	if len(doc.GetPages()) == 0 {
		return []Observation{}, nil
	}

	page := doc.GetPages()[0]
	observations := make([]Observation, 0, len(page.GetLines()))
	for _, line := range page.GetLines() {
		layout := line.GetLayout()
		text := strings.TrimSpace(textFromLayout(layout, doc.GetText()))
		if text == "" {
			continue
		}
		observations = append(observations, Observation{
			Candidates: []Candidate{{
				Text:       text,
				Confidence: float64(layout.GetConfidence()),
				Box:        boxFromLayout(layout),
			}},
		})
	}
	return observations, nil
}

// textFromLayout concatenates the text anchor segments of layout.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.GetTextAnchor() == nil {
		return ""
	}
	runes := []rune(fullText)
	total := int64(len(runes))

	var sb strings.Builder
	for _, seg := range layout.GetTextAnchor().GetTextSegments() {
		start, end := seg.GetStartIndex(), seg.GetEndIndex()
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		sb.WriteString(string(runes[start:end]))
	}
	return sb.String()
}

// boxFromLayout returns the normalized box spanned by the layout's
// normalized vertices, or nil when there are none.
func boxFromLayout(layout *documentaipb.Document_Page_Layout) *geometry.NormalizedBox {
	vertices := layout.GetBoundingPoly().GetNormalizedVertices()
	if len(vertices) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vertices {
		x, y := float64(v.GetX()), float64(v.GetY())
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	box := geometry.FromTopLeftNormalized(minX, minY, maxX, maxY)
	return &box
}
