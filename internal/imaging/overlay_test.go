package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawOverlay(t *testing.T) {
	img := imaging.New(100, 80, color.White)
	box := CropBox{Left: 10, Top: 5, Right: 90, Bottom: 75}

	out, err := DrawOverlay(img, box, []image.Point{{50, 40}}, OverlayOptions{BoxColor: "#00FF00", MarkColor: "#0000FF"})
	require.NoError(t, err)

	green := Pixel{G: 255, A: 255}
	blue := Pixel{B: 255, A: 255}
	white := Pixel{R: 255, G: 255, B: 255, A: 255}

	assert.Equal(t, green, PixelAt(out, 10, 40), "left edge")
	assert.Equal(t, green, PixelAt(out, 89, 40), "right edge is last column inside the box")
	assert.Equal(t, green, PixelAt(out, 30, 5), "top edge")
	assert.Equal(t, green, PixelAt(out, 30, 74), "bottom edge")
	assert.Equal(t, blue, PixelAt(out, 50, 40))
	assert.Equal(t, blue, PixelAt(out, 54, 40))
	assert.Equal(t, white, PixelAt(out, 30, 30))

	assert.Equal(t, white, PixelAt(img, 10, 40), "input is not modified")
}

func TestDrawOverlay_ClipsOutside(t *testing.T) {
	img := imaging.New(20, 20, color.White)
	out, err := DrawOverlay(img, CropBox{-5, -5, 40, 40}, []image.Point{{-1, -1}, {19, 19}}, OverlayOptions{Labels: true})
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestDrawOverlay_BadColor(t *testing.T) {
	img := imaging.New(20, 20, color.White)
	_, err := DrawOverlay(img, CropBox{0, 0, 20, 20}, nil, OverlayOptions{BoxColor: "gold"})
	assert.Error(t, err)
}

func TestEncodePNGBase64(t *testing.T) {
	img := imaging.New(7, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	enc, err := EncodePNGBase64(img)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 3), decoded.Bounds())
	assert.Equal(t, Pixel{R: 1, G: 2, B: 3, A: 255}, PixelAt(decoded, 6, 2))
}
