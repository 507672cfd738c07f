package calibration

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/wallpaper-align/internal/imaging"
)

// BorderRatio is the checkerboard band thickness as a fraction of image width.
const BorderRatio = 0.05

// minColorDistance is the smallest Lab distance allowed between any two
// pattern colours.
const minColorDistance = 0.2

// grayTolerance is the largest channel spread a checker blend may have
// before it counts as gray.
const grayTolerance = 2

// BorderSize returns the checkerboard band thickness for an image width.
// The band uses the same thickness on all four sides.
func BorderSize(width int) int {
	return int(math.Round(float64(width) * BorderRatio))
}

// PatternColors are the three colours of a calibration pattern.
type PatternColors struct {
	// Primary fills checker cells where x and y have equal parity.
	Primary imgutil.Pixel

	// Secondary fills the remaining checker cells.
	Secondary imgutil.Pixel

	// Background fills the interior.
	Background imgutil.Pixel
}

// DefaultPatternColors is red/green on white. Any mix of the three stays
// chromatic unless it is pure white.
var DefaultPatternColors = PatternColors{
	Primary:    imgutil.Pixel{R: 255, G: 0, B: 0, A: 255},
	Secondary:  imgutil.Pixel{R: 0, G: 255, B: 0, A: 255},
	Background: imgutil.Pixel{R: 255, G: 255, B: 255, A: 255},
}

// ParsePatternColors builds PatternColors from "#RRGGBB" strings. Empty
// strings keep the default for that slot.
func ParsePatternColors(primary, secondary, background string) (PatternColors, error) {
	colors := DefaultPatternColors
	slots := []struct {
		hex string
		dst *imgutil.Pixel
	}{
		{primary, &colors.Primary},
		{secondary, &colors.Secondary},
		{background, &colors.Background},
	}
	for _, s := range slots {
		if s.hex == "" {
			continue
		}
		p, err := imgutil.ParseHexColor(s.hex)
		if err != nil {
			return PatternColors{}, err
		}
		*s.dst = p
	}
	return colors, colors.Validate()
}

// Validate checks that the edge locator can tell the colours apart.
//
// The checker colours must be chromatic so two equal neighbours inside the
// band never look like interior; the background must be achromatic and not
// black so the interior does. Complementary checker colours are rejected:
// a smoothing resample averages neighbouring cells, and their mix is gray.
func (c PatternColors) Validate() error {
	if c.Primary.Achromatic() || c.Secondary.Achromatic() {
		return fmt.Errorf("checker colors %s and %s must both be chromatic (R, G, B not all equal)",
			c.Primary.Hex(), c.Secondary.Hex())
	}
	if mix, ok := grayBlend(c.Primary, c.Secondary); ok {
		return fmt.Errorf("checker colors %s and %s blend to gray %s under resampling",
			c.Primary.Hex(), c.Secondary.Hex(), mix.Hex())
	}
	if !c.Background.Achromatic() || c.Background.Black() {
		return fmt.Errorf("background %s must be a non-black gray", c.Background.Hex())
	}
	pairs := []struct {
		name string
		a, b imgutil.Pixel
	}{
		{"primary/secondary", c.Primary, c.Secondary},
		{"primary/background", c.Primary, c.Background},
		{"secondary/background", c.Secondary, c.Background},
	}
	for _, p := range pairs {
		if d := imgutil.ColorDistance(p.a, p.b); d < minColorDistance {
			return fmt.Errorf("%s colors too similar (distance %.3f < %.3f)", p.name, d, minColorDistance)
		}
	}
	return nil
}

// grayBlend reports whether some mix of a and b has all channels within
// grayTolerance, and returns that mix. The channel spread is convex along the
// mix, so its minimum lies where two channels cross.
func grayBlend(a, b imgutil.Pixel) (imgutil.Pixel, bool) {
	ca := [3]float64{float64(a.R), float64(a.G), float64(a.B)}
	cb := [3]float64{float64(b.R), float64(b.G), float64(b.B)}

	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			den := (ca[i] - ca[j]) - (cb[i] - cb[j])
			if den == 0 {
				continue
			}
			t := (ca[i] - ca[j]) / den
			if t <= 0 || t >= 1 {
				continue
			}
			mix := imgutil.Pixel{R: lerp(a.R, b.R, t), G: lerp(a.G, b.G, t), B: lerp(a.B, b.B, t), A: 255}
			if max(mix.R, mix.G, mix.B)-min(mix.R, mix.G, mix.B) <= grayTolerance {
				return mix, true
			}
		}
	}
	return imgutil.Pixel{}, false
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a)*(1-t) + float64(b)*t))
}

// GeneratePattern renders a calibration pattern: a one-pixel checkerboard
// band of BorderSize(width) pixels on every side around a solid interior.
//
// The result is an opaque *image.NRGBA. The output is fully determined by
// width, height and colors.
func GeneratePattern(width, height int, colors PatternColors) (*image.NRGBA, error) {
	if err := colors.Validate(); err != nil {
		return nil, err
	}
	border := BorderSize(width)
	if width <= 2 || height <= 2 {
		return nil, fmt.Errorf("pattern size %dx%d too small", width, height)
	}
	if border < 1 || 2*border >= width || 2*border >= height {
		return nil, fmt.Errorf("border %d leaves no interior in a %dx%d pattern", border, width, height)
	}

	dst := imaging.New(width, height, colors.Background.NRGBA())
	primary := colors.Primary.NRGBA()
	secondary := colors.Secondary.NRGBA()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= border && x < width-border && y >= border && y < height-border {
				continue
			}
			if x%2 == y%2 {
				dst.SetNRGBA(x, y, primary)
			} else {
				dst.SetNRGBA(x, y, secondary)
			}
		}
	}
	return dst, nil
}
