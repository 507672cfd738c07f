package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// Default overlay colours.
const (
	DefaultBoxColor  = "#FFD700"
	DefaultMarkColor = "#FF00FF"
)

// OverlayOptions controls DrawOverlay. Empty colours select the defaults.
type OverlayOptions struct {
	BoxColor  string
	MarkColor string
	// Labels prints the box corner coordinates next to the corners.
	Labels bool
}

// DrawOverlay draws a crop box outline and crosshair marks at the given
// points onto a copy of img, for checking a calibration by eye.
//
// Coordinates are relative to img's top-left corner. Parts of the box or
// marks outside the image are skipped.
//
// Alpha: preserved outside the drawn lines.
func DrawOverlay(img image.Image, box CropBox, marks []image.Point, opts OverlayOptions) (*image.NRGBA, error) {
	boxColor, err := overlayColor(opts.BoxColor, DefaultBoxColor)
	if err != nil {
		return nil, err
	}
	markColor, err := overlayColor(opts.MarkColor, DefaultMarkColor)
	if err != nil {
		return nil, err
	}

	// Clone rebases the copy to (0,0).
	result := imaging.Clone(img)

	right, bottom := box.Right-1, box.Bottom-1
	for x := box.Left; x <= right; x++ {
		setSafe(result, x, box.Top, boxColor)
		setSafe(result, x, bottom, boxColor)
	}
	for y := box.Top; y <= bottom; y++ {
		setSafe(result, box.Left, y, boxColor)
		setSafe(result, right, y, boxColor)
	}

	const arm = 4
	for _, p := range marks {
		for d := -arm; d <= arm; d++ {
			setSafe(result, p.X+d, p.Y, markColor)
			setSafe(result, p.X, p.Y+d, markColor)
		}
	}

	if opts.Labels {
		fg := color.NRGBA{255, 255, 255, 255}
		bg := color.NRGBA{0, 0, 0, 180}
		drawLabel(result, box.Left+2, box.Top+2, fmt.Sprintf("%d,%d", box.Left, box.Top), fg, bg)
		label := fmt.Sprintf("%d,%d", box.Right, box.Bottom)
		drawLabel(result, box.Right-2-len(label)*4, box.Bottom-9, label, fg, bg)
	}

	return result, nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func overlayColor(hex, fallback string) (color.NRGBA, error) {
	if hex == "" {
		hex = fallback
	}
	p, err := ParseHexColor(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	return p.NRGBA(), nil
}

func setSafe(img *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}

// drawLabel draws a text label with a 3x5 pixel font for digits and commas.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
		'-': {"000", "000", "111", "000", "000"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setSafe(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setSafe(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
