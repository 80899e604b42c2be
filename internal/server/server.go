package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/scan-overlay-mcp/internal/capture"
	"github.com/ironsheep/scan-overlay-mcp/internal/config"
	"github.com/ironsheep/scan-overlay-mcp/internal/ocr"
	"github.com/ironsheep/scan-overlay-mcp/internal/overlay"
	"github.com/ironsheep/scan-overlay-mcp/internal/scan"
)

// ServerName is reported in the initialize handshake.
const ServerName = "scan-overlay-mcp"

// Server handles MCP protocol communication
type Server struct {
	cfg     config.Config
	version string
	logger  *slog.Logger

	cache      *capture.PageCache
	recognizer ocr.Recognizer
	view       *overlay.View
	ui         *scan.UIQueue
	scanner    *scan.Orchestrator
}

// Options configures a Server.
type Options struct {
	Config config.Config

	// Recognizer overrides the engine named by Config.Engine.
	Recognizer ocr.Recognizer

	Logger  *slog.Logger
	Version string
}

// JSON-RPC error codes used by the server.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server with its view, interaction queue and scan worker
// running. Call Close when done.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	rec := opts.Recognizer
	if rec == nil {
		var err error
		rec, err = ocr.NewRecognizer(opts.Config.Engine, opts.Config.EngineOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to create recognizer: %w", err)
		}
	}

	s := &Server{
		cfg:        opts.Config,
		version:    version,
		logger:     logger,
		cache:      capture.NewPageCache(),
		recognizer: rec,
		view:       overlay.NewView(opts.Config.Container, opts.Config.Style),
		ui:         scan.NewUIQueue(16),
	}

	rc := opts.Config.Recognition()
	mapper := opts.Config.Mapper
	s.scanner = scan.New(rec, s.view, scan.Options{
		Config:     &rc,
		Mapper:     &mapper,
		Dispatcher: s.ui,
		Logger:     logger,
	})
	s.scanner.Start()

	logger.Debug("server ready", "engine", rec.Name(), "level", rc.Level,
		"container", fmt.Sprintf("%vx%v", opts.Config.Container.Width, opts.Config.Container.Height))
	return s, nil
}

// Close stops the scan worker, then the interaction queue.
func (s *Server) Close() {
	s.scanner.Close()
	s.ui.Close()
}

// Run serves MCP on stdin/stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), 1<<20)

	enc := json.NewEncoder(w)
	send := func(resp *MCPResponse) {
		if resp == nil {
			return
		}
		if err := enc.Encode(resp); err != nil {
			s.logger.Error("failed to encode response", "error", err)
		}
	}

	for in.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := in.Bytes()
		if len(raw) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			send(errorResponse(nil, codeParseError, "Parse error", err.Error()))
			continue
		}
		send(s.handleRequest(ctx, &req))
	}

	if err := in.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return resultResponse(req.ID, map[string]interface{}{})
	default:
		return errorResponse(req.ID, codeMethodNotFound, "Method not found: "+req.Method, "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
		"serverInfo": map[string]interface{}{
			"name":    ServerName,
			"version": s.version,
		},
	})
}

func resultResponse(id interface{}, result interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

// errorResponse builds a JSON-RPC error response. An empty data is omitted.
func errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}
