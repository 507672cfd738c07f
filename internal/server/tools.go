package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func intProperty(description string, def interface{}) map[string]interface{} {
	p := map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
	if def != nil {
		p["default"] = def
	}
	return p
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file and whether it has transparency.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Calibration
		{
			Name:        "pattern_generate",
			Description: "Generate a calibration pattern (white interior, checkerboard border of 5% of the width) and save it. Set it as lock screen wallpaper and take screenshots of the lock and password screens.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output": pathProperty("Absolute path of the pattern to write; the extension selects the format"),
					"width":  intProperty("Pattern width in pixels (the device's native screen width)", nil),
					"height": intProperty("Pattern height in pixels", nil),
					"primary": map[string]interface{}{
						"type":        "string",
						"description": "Checker colour A as #RRGGBB. Default #FF0000",
					},
					"secondary": map[string]interface{}{
						"type":        "string",
						"description": "Checker colour B as #RRGGBB. Default #00FF00",
					},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Interior colour as #RRGGBB; must be grey or white. Default #FFFFFF",
					},
				},
				"required": []string{"output", "width", "height"},
			},
		},
		{
			Name:        "edges_locate",
			Description: "Measure the calibration border thickness on each side of a pattern screenshot. Sides where no border crossing is found are reported as -1 and listed in missing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the screenshot"),
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a PNG with the crossings marked. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "crop_solve",
			Description: "Find the crop box the device applies to its wallpaper, from a reference screenshot (pattern shown unscaled) and a target screenshot (pattern as zoomed by the device).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference":      pathProperty("Absolute path to the reference (lock screen) screenshot"),
					"target":         pathProperty("Absolute path to the target (password screen) screenshot"),
					"max_iterations": intProperty("Maximum crop boxes to evaluate", 500),
					"stall_limit":    intProperty("Iterations allowed without improvement", 50),
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a PNG of the reference with the crop box drawn. Default false",
						"default":     false,
					},
				},
				"required": []string{"reference", "target"},
			},
		},

		// Profile
		{
			Name:        "mask_extract",
			Description: "Find the black hole in a marker screenshot and build the visibility mask around it. Optionally save the mask.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the marker screenshot"),
					"circle": map[string]interface{}{
						"type":        "boolean",
						"description": "Use a circular mask. Default false",
						"default":     false,
					},
					"scale":    intProperty("Mask size in percent of the detected hole", 100),
					"offset_x": intProperty("Horizontal offset of the mask centre in pixels", 0),
					"offset_y": intProperty("Vertical offset of the mask centre in pixels", 0),
					"output":   pathProperty("Optional path to save the mask image"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "tint_detect",
			Description: "Estimate the lock screen darkening, in percent, from a screenshot of a plain white wallpaper.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the screenshot"),
					"x1":   intProperty("Left edge of the sample area (0-based)", 200),
					"y1":   intProperty("Top edge of the sample area (0-based)", 200),
					"x2":   intProperty("Right edge of the sample area (exclusive)", 400),
					"y2":   intProperty("Bottom edge of the sample area (exclusive)", 400),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
