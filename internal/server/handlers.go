package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/wallpaper-align/internal/calibration"
	"github.com/ironsheep/wallpaper-align/internal/imaging"
	"github.com/ironsheep/wallpaper-align/internal/logging"
	"github.com/ironsheep/wallpaper-align/internal/pipeline"
	"github.com/ironsheep/wallpaper-align/internal/profile"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "edges_locate", "crop_solve").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		logging.Debugf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the calibration or profile function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Calibration
	case "pattern_generate":
		return s.handlePatternGenerate(args)
	case "edges_locate":
		return s.handleEdgesLocate(args)
	case "crop_solve":
		return s.handleCropSolve(args)

	// Profile
	case "mask_extract":
		return s.handleMaskExtract(args)
	case "tint_detect":
		return s.handleTintDetect(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func rectBox(r image.Rectangle) imaging.CropBox {
	return imaging.CropBox{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

// overlayImage is embedded in results that can carry a rendered PNG.
type overlayImage struct {
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func encodeOverlay(img image.Image) (overlayImage, error) {
	enc, err := imaging.EncodePNGBase64(img)
	if err != nil {
		return overlayImage{}, err
	}
	return overlayImage{ImageBase64: enc, MimeType: "image/png"}, nil
}

// === Basic Image Information Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Calibration Handlers ===

type patternGenerateArgs struct {
	Output     string `json:"output"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

type patternGenerateResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Border int    `json:"border"`
}

func (s *Server) handlePatternGenerate(args json.RawMessage) (interface{}, error) {
	var a patternGenerateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	colors, err := calibration.ParsePatternColors(a.Primary, a.Secondary, a.Background)
	if err != nil {
		return nil, err
	}
	pattern, err := calibration.GeneratePattern(a.Width, a.Height, colors)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(pattern, a.Output); err != nil {
		return nil, err
	}
	// A later screenshot may reuse the path.
	s.cache.Evict(a.Output)

	return &patternGenerateResult{
		Path:   a.Output,
		Width:  a.Width,
		Height: a.Height,
		Border: calibration.BorderSize(a.Width),
	}, nil
}

type edgesLocateArgs struct {
	Path    string `json:"path"`
	Overlay bool   `json:"overlay"`
}

type edgesLocateResult struct {
	Width     int                       `json:"width"`
	Height    int                       `json:"height"`
	Border    int                       `json:"border"`
	Distances calibration.EdgeDistances `json:"distances"`
	Missing   []string                  `json:"missing,omitempty"`
	overlayImage
}

func (s *Server) handleEdgesLocate(args json.RawMessage) (interface{}, error) {
	var a edgesLocateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	d := calibration.Locate(img)
	result := &edgesLocateResult{
		Width:     w,
		Height:    h,
		Border:    calibration.BorderSize(w),
		Distances: d,
	}
	for _, side := range d.Missing() {
		result.Missing = append(result.Missing, side.String())
	}

	if a.Overlay {
		full := imaging.CropBox{Right: w, Bottom: h}
		rendered, err := imaging.DrawOverlay(img, full, d.Crossings(w, h), imaging.OverlayOptions{})
		if err != nil {
			return nil, err
		}
		if result.overlayImage, err = encodeOverlay(rendered); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type cropSolveArgs struct {
	Reference     string `json:"reference"`
	Target        string `json:"target"`
	MaxIterations int    `json:"max_iterations"`
	StallLimit    int    `json:"stall_limit"`
	Overlay       bool   `json:"overlay"`
}

type cropSolveResult struct {
	Box       imaging.CropBox           `json:"box"`
	Reference calibration.EdgeDistances `json:"reference"`
	Target    calibration.EdgeDistances `json:"target"`
	overlayImage
}

func (s *Server) handleCropSolve(args json.RawMessage) (interface{}, error) {
	var a cropSolveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ref, err := s.cache.Load(a.Reference)
	if err != nil {
		return nil, err
	}
	target, err := s.cache.Load(a.Target)
	if err != nil {
		return nil, err
	}

	w, h := ref.Bounds().Dx(), ref.Bounds().Dy()
	if target.Bounds().Dx() != w || target.Bounds().Dy() != h {
		return nil, fmt.Errorf("target is %dx%d but reference is %dx%d",
			target.Bounds().Dx(), target.Bounds().Dy(), w, h)
	}

	refDist := calibration.Locate(ref)
	if err := refDist.Validate("crop_solve", a.Reference); err != nil {
		return nil, err
	}
	targetDist := calibration.Locate(target)
	if err := targetDist.Validate("crop_solve", a.Target); err != nil {
		return nil, err
	}

	box, err := calibration.Solve(ref, refDist, targetDist, calibration.SolverOptions{
		MaxIterations: a.MaxIterations,
		StallLimit:    a.StallLimit,
	})
	if err != nil {
		return nil, err
	}

	result := &cropSolveResult{Box: box, Reference: refDist, Target: targetDist}
	if a.Overlay {
		rendered, err := imaging.DrawOverlay(ref, box, refDist.Crossings(w, h), imaging.OverlayOptions{Labels: true})
		if err != nil {
			return nil, err
		}
		if result.overlayImage, err = encodeOverlay(rendered); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// === Profile Handlers ===

type maskExtractArgs struct {
	Path    string `json:"path"`
	Circle  bool   `json:"circle"`
	Scale   int    `json:"scale"`
	OffsetX int    `json:"offset_x"`
	OffsetY int    `json:"offset_y"`
	Output  string `json:"output"`
}

type maskExtractResult struct {
	Marker imaging.CropBox `json:"marker"`
	Box    imaging.CropBox `json:"box"`
	Pixels int             `json:"pixels"`
	Path   string          `json:"path,omitempty"`
}

func (s *Server) handleMaskExtract(args json.RawMessage) (interface{}, error) {
	var a maskExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 100
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	marker, err := profile.FindMarker(img)
	if err != nil {
		return nil, err
	}
	mask, box, err := profile.ExtractMask(img, profile.MaskOptions{
		Circle:       a.Circle,
		ScalePercent: a.Scale,
		Offset:       image.Pt(a.OffsetX, a.OffsetY),
	})
	if err != nil {
		return nil, err
	}

	result := &maskExtractResult{
		Marker: rectBox(marker),
		Box:    rectBox(box),
		Pixels: profile.CountSet(mask),
	}
	if a.Output != "" {
		if err := imaging.Save(mask, a.Output); err != nil {
			return nil, err
		}
		s.cache.Evict(a.Output)
		result.Path = a.Output
	}
	return result, nil
}

type tintDetectArgs struct {
	Path string `json:"path"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
	X2   int    `json:"x2"`
	Y2   int    `json:"y2"`
}

type tintDetectResult struct {
	TintPercent float64         `json:"tint_percent"`
	Area        imaging.CropBox `json:"area"`
}

func (s *Server) handleTintDetect(args json.RawMessage) (interface{}, error) {
	var a tintDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	area := image.Rect(a.X1, a.Y1, a.X2, a.Y2)
	if a.X1 == 0 && a.Y1 == 0 && a.X2 == 0 && a.Y2 == 0 {
		area = pipeline.DefaultSampleArea
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	tint, err := profile.DetectTint(img, area)
	if err != nil {
		return nil, err
	}
	return &tintDetectResult{TintPercent: tint, Area: rectBox(area)}, nil
}
