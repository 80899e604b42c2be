// Package server implements the MCP (Model Context Protocol) server for document
// scanning with recognized-text overlays.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Scanning:
//   - scan_document: Capture pages, recognize the first and overlay its lines
//   - scan_status: Trigger state, overlays and text of the current view
//   - scan_render: Current view as PNG
//
// Geometry:
//   - scan_map_box: Normalized box to view-space overlay rectangle
//   - scan_display_rect: Aspect-fit rectangle of a page in a container
//
// Pages:
//   - page_info: Dimensions and format of a page image
//   - page_crop_region: Crop a normalized box out of a page
//
// Engine:
//   - ocr_info: Recognition engine availability and settings
//
// # Scan State
//
// A Server owns one overlay.View, an interaction queue that serializes every
// change to it, and a scan.Orchestrator running passes on a single worker.
// Only one scan runs at a time; scan_document fails with a busy error while
// another is in flight. Loaded pages are cached by path for the lifetime of
// the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv, err := server.New(server.Options{Config: cfg, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//	return srv.Run(ctx)
package server
