package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func rectSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x":      numberProp("Left edge"),
			"y":      numberProp("Origin edge on the vertical axis"),
			"width":  numberProp("Width"),
			"height": numberProp("Height"),
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

func sizeSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"width":  numberProp("Width in view units"),
			"height": numberProp("Height in view units"),
		},
		"required": []string{"width", "height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Scanning
		{
			Name:        "scan_document",
			Description: "Capture a document from page image files, recognize the text of the first page and lay orange overlay boxes over every recognized line. Returns the text block (one line per recognized line), each line's normalized and screen box, and the display rect of the page inside the view. Fails if a scan is already running.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the captured pages, in order. Only the first page is recognized. An empty list behaves like a cancelled capture.",
					},
					"container_width":  numberProp("Optional view width. Resizes the view before the scan."),
					"container_height": numberProp("Optional view height. Resizes the view before the scan."),
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the rendered view (page, overlays, text panel) as base64 PNG. Default false",
						"default":     false,
					},
					"timeout_seconds": map[string]interface{}{
						"type":        "number",
						"description": "How long to wait for the scan. The scan itself keeps running if the wait times out. Default 120",
						"default":     120,
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "scan_status",
			Description: "Report the current view: whether the scan trigger is enabled, the shown page, its display rect and letterbox, the overlay boxes and the recognized text.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "scan_render",
			Description: "Render the current view (white container, aspect-fit page, rounded overlay outlines and optional text panel) as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text_panel_height": map[string]interface{}{
						"type":        "integer",
						"description": "Height of the text panel below the view. Default from configuration; 0 disables it",
					},
				},
			},
		},

		// Geometry
		{
			Name:        "scan_map_box",
			Description: "Convert a normalized bounding box (fractions of the page, origin bottom-left) into a view-space overlay rectangle (origin top-left) for a page shown at display_rect inside container, inflated by the margin on every side.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"box":          rectSchema("Normalized box, all components in [0,1], origin bottom-left"),
					"display_rect": rectSchema("Rectangle the page occupies inside the container, origin top-left"),
					"container":    sizeSchema("Size of the view the page is fitted into"),
					"margin":       numberProp("Optional inflation on every side. Default from configuration (2.2)"),
					"correct_filled_origin": map[string]interface{}{
						"type":        "boolean",
						"description": "Also shift the box by its height when the page fills the container exactly. Default from configuration (false)",
					},
				},
				"required": []string{"box", "display_rect", "container"},
			},
		},
		{
			Name:        "scan_display_rect",
			Description: "Compute the rectangle a page of the given pixel size occupies when aspect-fit and centered in a container, and which axis is letterboxed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_width":      numberProp("Page width in pixels"),
					"image_height":     numberProp("Page height in pixels"),
					"container_width":  numberProp("Container width"),
					"container_height": numberProp("Container height"),
				},
				"required": []string{"image_width", "image_height", "container_width", "container_height"},
			},
		},

		// Pages
		{
			Name:        "page_info",
			Description: "Load a page image (EXIF orientation applied) and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the page image",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "page_crop_region",
			Description: "Crop a normalized box (origin bottom-left, as returned in scan_document regions) out of a page image and return it as base64 PNG. Use this to inspect a recognized line.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the page image",
					},
					"box": rectSchema("Normalized box, all components in [0,1], origin bottom-left"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "box"},
			},
		},

		// Engine
		{
			Name:        "ocr_info",
			Description: "Report the configured recognition engine, its availability and the recognition level and languages every scan uses.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
