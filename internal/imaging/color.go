package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Pixel is a single 8-bit colour sample read in non-premultiplied form.
//
// Opaque sources (RGB images) always report A = 255, so callers never have to
// distinguish three- and four-channel images: a transformation declares its
// alpha policy in its documentation instead.
type Pixel struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha component (0-255, 255 = opaque)
}

// PixelAt reads the pixel at (x, y) in image coordinates.
//
// Coordinates are absolute, i.e. they include img.Bounds().Min. Reading outside
// the bounds returns the zero (transparent black) pixel, as image.Image does.
func PixelAt(img image.Image, x, y int) Pixel {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return Pixel{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any color.Color to a Pixel.
func FromColor(c color.Color) Pixel {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{R: n.R, G: n.G, B: n.B, A: n.A}
}

// NRGBA returns the pixel as a color.NRGBA.
func (p Pixel) NRGBA() color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// Achromatic reports whether all three colour channels are equal.
func (p Pixel) Achromatic() bool {
	return p.R == p.G && p.G == p.B
}

// Black reports whether the colour channels are all zero. Alpha is ignored.
func (p Pixel) Black() bool {
	return p.R == 0 && p.G == 0 && p.B == 0
}

// SameRGB compares colour channels only.
func (p Pixel) SameRGB(o Pixel) bool {
	return p.R == o.R && p.G == o.G && p.B == o.B
}

// SameMarker reports whether two neighbouring pixels both belong to the solid
// interior of a calibration pattern.
//
// Both pixels must be achromatic, non-black and equal. A display that dims the
// screen scales every channel by the same factor, so a white interior stays
// achromatic after dimming, while the chromatic checkerboard cells never match.
// Black is refused because it is the sentinel used for the visible "hole" in
// rendered lock screens.
func SameMarker(a, b Pixel) bool {
	return a.Achromatic() && !a.Black() && a.SameRGB(b)
}

// ParseHexColor parses "#RRGGBB" (the leading '#' is required) into an opaque
// pixel.
func ParseHexColor(hex string) (Pixel, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Pixel{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return Pixel{R: r, G: g, B: b, A: 255}, nil
}

// ColorDistance returns the CIE Lab distance between two pixels' colour
// channels. Typical values: 0 for identical colours, ~1.0 for black vs white.
func ColorDistance(a, b Pixel) float64 {
	ca, _ := colorful.MakeColor(color.NRGBA{R: a.R, G: a.G, B: a.B, A: 255})
	cb, _ := colorful.MakeColor(color.NRGBA{R: b.R, G: b.G, B: b.B, A: 255})
	return ca.DistanceLab(cb)
}

// Hex formats the colour channels as "#RRGGBB".
func (p Pixel) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", p.R, p.G, p.B)
}
