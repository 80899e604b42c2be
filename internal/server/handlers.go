package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/scan-overlay-mcp/internal/capture"
	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
	"github.com/ironsheep/scan-overlay-mcp/internal/ocr"
	"github.com/ironsheep/scan-overlay-mcp/internal/overlay"
	"github.com/ironsheep/scan-overlay-mcp/internal/scan"
)

const defaultScanTimeout = 120 * time.Second

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scan_document", "scan_map_box").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{{"type": "text", "text": mustMarshalJSON(result)}}
	return resultResponse(req.ID, map[string]interface{}{"content": content})
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Scanning
	case "scan_document":
		return s.handleScanDocument(ctx, args)
	case "scan_status":
		return s.handleScanStatus()
	case "scan_render":
		return s.handleScanRender(args)

	// Geometry
	case "scan_map_box":
		return s.handleScanMapBox(args)
	case "scan_display_rect":
		return s.handleScanDisplayRect(args)

	// Pages
	case "page_info":
		return s.handlePageInfo(args)
	case "page_crop_region":
		return s.handlePageCropRegion(args)

	// Engine
	case "ocr_info":
		return s.handleOCRInfo()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Scanning Handlers ===

type scanDocumentArgs struct {
	Paths           []string `json:"paths"`
	ContainerWidth  float64  `json:"container_width"`
	ContainerHeight float64  `json:"container_height"`
	IncludeImage    bool     `json:"include_image"`
	TimeoutSeconds  float64  `json:"timeout_seconds"`
}

type scanDocumentResult struct {
	Text        string                `json:"text"`
	LineCount   int                   `json:"line_count"`
	Regions     []scan.Region         `json:"regions"`
	DisplayRect geometry.Rect         `json:"display_rect"`
	Container   geometry.Size         `json:"container"`
	Letterbox   string                `json:"letterbox"`
	Engine      string                `json:"engine"`
	Pages       int                   `json:"pages"`
	ElapsedMS   int64                 `json:"elapsed_ms"`
	Image       *overlay.RenderResult `json:"image,omitempty"`
}

func (s *Server) handleScanDocument(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	timeout := defaultScanTimeout
	if a.TimeoutSeconds > 0 {
		timeout = time.Duration(a.TimeoutSeconds * float64(time.Second))
	}
	if (a.ContainerWidth > 0) != (a.ContainerHeight > 0) || a.ContainerWidth < 0 || a.ContainerHeight < 0 {
		return nil, fmt.Errorf("container_width and container_height must both be positive when given")
	}

	if !s.scanner.TriggerEnabled() {
		return nil, scan.ErrBusy
	}
	if a.ContainerWidth > 0 {
		size := geometry.Size{Width: a.ContainerWidth, Height: a.ContainerHeight}
		s.ui.Sync(func() { s.view.SetContainer(size) })
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	captured := capture.NewFileSource(s.cache, a.Paths...).Capture(ctx)
	results, err := s.scanner.HandleCapture(captured)
	if err != nil {
		return nil, err
	}

	var res scan.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("scan still running after %v: %w", timeout, ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}

	out := &scanDocumentResult{
		Text:        res.Text,
		LineCount:   countLines(res.Text),
		Regions:     res.Regions,
		DisplayRect: res.Display,
		Container:   res.Container,
		Letterbox:   geometry.LetterboxOf(res.Display, res.Container).String(),
		Engine:      res.Engine,
		Pages:       len(captured.Pages),
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
	if out.Regions == nil {
		out.Regions = []scan.Region{}
	}
	if a.IncludeImage {
		img, err := s.view.RenderPNG(s.view.Style())
		if err != nil {
			return nil, fmt.Errorf("failed to render view: %w", err)
		}
		out.Image = img
	}
	return out, nil
}

func countLines(text string) int {
	n := 0
	for _, r := range text {
		if r == '\n' {
			n++
		}
	}
	return n
}

type scanStatusResult struct {
	overlay.State
	Engine string `json:"engine"`
}

func (s *Server) handleScanStatus() (interface{}, error) {
	var state overlay.State
	if !s.ui.Sync(func() { state = s.view.Snapshot() }) {
		return nil, errors.New("view is shut down")
	}
	state.TriggerEnabled = state.TriggerEnabled && s.scanner.TriggerEnabled()
	return &scanStatusResult{State: state, Engine: s.recognizer.Name()}, nil
}

type scanRenderArgs struct {
	TextPanelHeight *int `json:"text_panel_height"`
}

func (s *Server) handleScanRender(args json.RawMessage) (interface{}, error) {
	var a scanRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	style := s.view.Style()
	if a.TextPanelHeight != nil {
		if *a.TextPanelHeight < 0 {
			return nil, fmt.Errorf("text_panel_height must not be negative")
		}
		style.TextPanelHeight = *a.TextPanelHeight
	}
	return s.view.RenderPNG(style)
}

// === Geometry Handlers ===

type scanMapBoxArgs struct {
	Box                 geometry.NormalizedBox `json:"box"`
	DisplayRect         geometry.Rect          `json:"display_rect"`
	Container           geometry.Size          `json:"container"`
	Margin              *float64               `json:"margin"`
	CorrectFilledOrigin *bool                  `json:"correct_filled_origin"`
}

type scanMapBoxResult struct {
	Screen     geometry.Rect `json:"screen"`
	Uninflated geometry.Rect `json:"uninflated"`
	Margin     float64       `json:"margin"`
	Letterbox  string        `json:"letterbox"`
}

func (s *Server) handleScanMapBox(args json.RawMessage) (interface{}, error) {
	var a scanMapBoxArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !a.Box.Valid() {
		return nil, fmt.Errorf("box %s is not a normalized rectangle", a.Box)
	}

	mapper := s.cfg.Mapper
	if a.Margin != nil {
		if *a.Margin < 0 {
			return nil, fmt.Errorf("margin must not be negative")
		}
		mapper.Margin = *a.Margin
	}
	if a.CorrectFilledOrigin != nil {
		mapper.CorrectFilledOrigin = *a.CorrectFilledOrigin
	}

	uninflated := mapper.ToScreenUninflated(a.Box, a.DisplayRect, a.Container)
	return &scanMapBoxResult{
		Screen:     mapper.Inflate(uninflated),
		Uninflated: uninflated,
		Margin:     mapper.Margin,
		Letterbox:  geometry.LetterboxOf(a.DisplayRect, a.Container).String(),
	}, nil
}

type scanDisplayRectArgs struct {
	ImageWidth      float64 `json:"image_width"`
	ImageHeight     float64 `json:"image_height"`
	ContainerWidth  float64 `json:"container_width"`
	ContainerHeight float64 `json:"container_height"`
}

type scanDisplayRectResult struct {
	DisplayRect geometry.Rect `json:"display_rect"`
	Scale       float64       `json:"scale"`
	Letterbox   string        `json:"letterbox"`
}

func (s *Server) handleScanDisplayRect(args json.RawMessage) (interface{}, error) {
	var a scanDisplayRectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImageWidth <= 0 || a.ImageHeight <= 0 || a.ContainerWidth <= 0 || a.ContainerHeight <= 0 {
		return nil, fmt.Errorf("image and container dimensions must be positive")
	}

	container := geometry.Size{Width: a.ContainerWidth, Height: a.ContainerHeight}
	display := geometry.AspectFit(geometry.Size{Width: a.ImageWidth, Height: a.ImageHeight}, container)
	return &scanDisplayRectResult{
		DisplayRect: display,
		Scale:       display.Width / a.ImageWidth,
		Letterbox:   geometry.LetterboxOf(display, container).String(),
	}, nil
}

// === Page Handlers ===

type pageArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePageInfo(args json.RawMessage) (interface{}, error) {
	var a pageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return capture.LoadPageInfo(s.cache, a.Path)
}

type pageCropRegionArgs struct {
	Path  string                 `json:"path"`
	Box   geometry.NormalizedBox `json:"box"`
	Scale float64                `json:"scale"`
}

func (s *Server) handlePageCropRegion(args json.RawMessage) (interface{}, error) {
	var a pageCropRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return overlay.CropRegion(img, a.Box, a.Scale)
}

// === Engine Handlers ===

type infoReporter interface {
	Info() ocr.Info
}

type ocrInfoResult struct {
	ocr.Info
	Level               ocr.Level `json:"level"`
	Languages           []string  `json:"languages"`
	MinConfidence       float64   `json:"min_confidence"`
	Margin              float64   `json:"margin"`
	CorrectFilledOrigin bool      `json:"correct_filled_origin"`
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	info := ocr.Info{Available: true, Engine: s.recognizer.Name()}
	if r, ok := s.recognizer.(infoReporter); ok {
		info = r.Info()
	}

	rc := s.scanner.Config()
	return &ocrInfoResult{
		Info:                info,
		Level:               rc.Level,
		Languages:           rc.Languages,
		MinConfidence:       rc.MinConfidence,
		Margin:              s.cfg.Mapper.Margin,
		CorrectFilledOrigin: s.cfg.Mapper.CorrectFilledOrigin,
	}, nil
}
