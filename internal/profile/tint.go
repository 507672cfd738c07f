package profile

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/wallpaper-align/internal/imaging"
)

// DetectTint estimates how much a lock screen darkens the wallpaper.
//
// The screenshot should show a pure white wallpaper. For every pixel in rect
// (image-relative, origin at the top-left corner) the darkness
// 1 - channel/255 is averaged over R, G and B; the result is the mean over the
// region, in percent.
func DetectTint(img image.Image, rect image.Rectangle) (float64, error) {
	b := img.Bounds()
	if rect.Empty() {
		return 0, fmt.Errorf("tint sample area %v is empty", rect)
	}
	if !rect.In(image.Rect(0, 0, b.Dx(), b.Dy())) {
		return 0, fmt.Errorf("tint sample area %v exceeds %dx%d image", rect, b.Dx(), b.Dy())
	}

	darkness := make([]float64, 0, rect.Dx()*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := imaging.PixelAt(img, b.Min.X+x, b.Min.Y+y)
			d := (3 - (float64(p.R)+float64(p.G)+float64(p.B))/255) / 3
			darkness = append(darkness, d)
		}
	}
	return stat.Mean(darkness, nil) * 100, nil
}

// ApplyTint darkens img by percent (0-100), scaling every colour channel by
// 1 - percent/100 and truncating. Alpha is kept. A zero percent returns img
// unchanged.
func ApplyTint(img image.Image, percent float64) (image.Image, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("tint %.2f%% outside 0-100", percent)
	}
	if percent == 0 {
		return img, nil
	}

	factor := 1 - percent/100
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: uint8(float64(c.R) * factor),
			G: uint8(float64(c.G) * factor),
			B: uint8(float64(c.B) * factor),
			A: c.A,
		}
	}), nil
}
