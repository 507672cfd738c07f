package profile

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Composite paints src through mask onto a black canvas and crops the result
// to the mask's non-zero bounds. src is aligned to the mask's origin and must
// be at least as large as the mask.
//
// The output is opaque; translucent source pixels blend against black.
func Composite(src image.Image, mask *image.Gray) (*image.NRGBA, error) {
	mb := mask.Bounds()
	sb := src.Bounds()
	if sb.Dx() < mb.Dx() || sb.Dy() < mb.Dy() {
		return nil, fmt.Errorf("source %dx%d is smaller than mask %dx%d", sb.Dx(), sb.Dy(), mb.Dx(), mb.Dy())
	}

	visible := MaskBounds(mask)
	if visible.Empty() {
		return nil, fmt.Errorf("mask has no visible pixels")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, mb.Dx(), mb.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.DrawMask(canvas, canvas.Bounds(), src, sb.Min, coverage(mask), mb.Min, draw.Over)

	return imaging.Crop(canvas, visible.Sub(mb.Min)), nil
}

// coverage reinterprets mask levels as alpha. DrawMask reads only the mask's
// alpha channel, and every *image.Gray pixel is opaque.
func coverage(mask *image.Gray) *image.Alpha {
	return &image.Alpha{Pix: mask.Pix, Stride: mask.Stride, Rect: mask.Rect}
}
