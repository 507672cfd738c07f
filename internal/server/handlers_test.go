package server

import (
	"encoding/json"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/wallpaper-align/internal/calibration"
	imgutil "github.com/ironsheep/wallpaper-align/internal/imaging"
)

// createTestImageFile saves img as a PNG in a per-test directory and returns
// its path.
func createTestImageFile(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := imgutil.Save(img, path); err != nil {
		t.Fatalf("failed to save image: %v", err)
	}
	return path
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) interface{} {
	t.Helper()
	argsJSON, _ := json.Marshal(args)
	result, err := s.executeTool(name, argsJSON)
	if err != nil {
		t.Fatalf("executeTool(%s) failed: %v", name, err)
	}
	return result
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New("test")
	imgPath := createTestImageFile(t, "dims.png", imaging.New(200, 150, color.NRGBA{0, 255, 0, 255}))

	params := map[string]interface{}{
		"name":      "image_dimensions",
		"arguments": map[string]interface{}{"path": imgPath},
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: paramsJSON})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	text := content[0]["text"].(string)

	var dims imgutil.DimensionsResult
	if err := json.Unmarshal([]byte(text), &dims); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New("test")
	params := map[string]interface{}{
		"name":      "edges_locate",
		"arguments": map[string]interface{}{"path": "/nonexistent/image.png"},
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: paramsJSON})

	if resp.Error == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New("test")
	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: json.RawMessage(`[1,2]`)})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("Expected -32602 error, got %+v", resp.Error)
	}
}

func TestCalibrationTools(t *testing.T) {
	s := New("test")
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.png")

	gen := callTool(t, s, "pattern_generate", map[string]interface{}{
		"output": refPath,
		"width":  200,
		"height": 200,
	}).(*patternGenerateResult)
	if gen.Border != 10 {
		t.Errorf("Border: got %d, want 10", gen.Border)
	}

	ref, err := imgutil.Open(refPath)
	if err != nil {
		t.Fatalf("failed to open pattern: %v", err)
	}
	device := imgutil.CropBox{Left: 4, Top: 6, Right: 194, Bottom: 197}
	rendered, err := imgutil.CropResize(ref, device, 200, 200, imaging.NearestNeighbor)
	if err != nil {
		t.Fatalf("CropResize failed: %v", err)
	}
	targetPath := createTestImageFile(t, "target.png", rendered)

	located := callTool(t, s, "edges_locate", map[string]interface{}{
		"path":    refPath,
		"overlay": true,
	}).(*edgesLocateResult)
	want := calibration.EdgeDistances{Left: 10, Right: 10, Top: 10, Bottom: 10}
	if located.Distances != want {
		t.Errorf("Distances: got %v, want %v", located.Distances, want)
	}
	if located.MimeType != "image/png" || located.ImageBase64 == "" {
		t.Error("Expected an overlay image")
	}

	solved := callTool(t, s, "crop_solve", map[string]interface{}{
		"reference": refPath,
		"target":    targetPath,
	}).(*cropSolveResult)

	check, err := imgutil.CropResize(ref, solved.Box, 200, 200, imaging.NearestNeighbor)
	if err != nil {
		t.Fatalf("CropResize failed: %v", err)
	}
	if got := calibration.Locate(check); got != solved.Target {
		t.Errorf("solved box %s measures %v, want %v", solved.Box, got, solved.Target)
	}
	if solved.ImageBase64 != "" {
		t.Error("Overlay should be omitted unless requested")
	}
}

func TestCropSolve_MissingMarker(t *testing.T) {
	s := New("test")
	blank := createTestImageFile(t, "blank.png", imaging.New(100, 100, color.NRGBA{R: 255, A: 255}))

	argsJSON, _ := json.Marshal(map[string]interface{}{"reference": blank, "target": blank})
	_, err := s.executeTool("crop_solve", argsJSON)
	if err == nil {
		t.Fatal("Expected error for screenshots without a pattern")
	}
	if !strings.Contains(err.Error(), "blank.png") {
		t.Errorf("error should name the input: %v", err)
	}
}

func TestMaskExtract(t *testing.T) {
	s := New("test")
	marker := imaging.New(200, 200, color.White)
	for y := 70; y < 130; y++ {
		for x := 80; x < 120; x++ {
			marker.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	markerPath := createTestImageFile(t, "marker.png", marker)
	maskPath := filepath.Join(t.TempDir(), "mask.png")

	result := callTool(t, s, "mask_extract", map[string]interface{}{
		"path":   markerPath,
		"scale":  50,
		"output": maskPath,
	}).(*maskExtractResult)

	if result.Marker != (imgutil.CropBox{Left: 80, Top: 70, Right: 120, Bottom: 130}) {
		t.Errorf("Marker: got %s", result.Marker)
	}
	if result.Box != (imgutil.CropBox{Left: 90, Top: 85, Right: 110, Bottom: 115}) {
		t.Errorf("Box: got %s", result.Box)
	}
	if result.Pixels != 20*30 {
		t.Errorf("Pixels: got %d, want 600", result.Pixels)
	}
	if _, err := imgutil.Open(maskPath); err != nil {
		t.Errorf("mask not written: %v", err)
	}
}

func TestTintDetect(t *testing.T) {
	s := New("test")
	imgPath := createTestImageFile(t, "tint.png", imaging.New(500, 500, color.NRGBA{R: 204, G: 204, B: 204, A: 255}))

	result := callTool(t, s, "tint_detect", map[string]interface{}{"path": imgPath}).(*tintDetectResult)
	if result.TintPercent < 19.99 || result.TintPercent > 20.01 {
		t.Errorf("TintPercent: got %.3f, want 20", result.TintPercent)
	}
	if result.Area != (imgutil.CropBox{Left: 200, Top: 200, Right: 400, Bottom: 400}) {
		t.Errorf("Area: got %s, want default", result.Area)
	}

	argsJSON, _ := json.Marshal(map[string]interface{}{"path": imgPath, "x1": 450, "y1": 450, "x2": 600, "y2": 600})
	if _, err := s.executeTool("tint_detect", argsJSON); err == nil {
		t.Error("Expected error for sample area outside the image")
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New("test")

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New("test")

	for _, tool := range GetToolDefinitions() {
		if _, err := s.executeTool(tool.Name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("executeTool(%s) should fail for invalid JSON", tool.Name)
		}
	}
}
