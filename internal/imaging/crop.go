package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// CropBox is a crop rectangle in absolute pixel coordinates.
// Left and Top are inclusive, Right and Bottom exclusive.
type CropBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Rect converts the box to an image.Rectangle.
func (b CropBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

func (b CropBox) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.Left, b.Top, b.Right, b.Bottom)
}

// Validate checks 0 <= Left < Right <= width and 0 <= Top < Bottom <= height.
func (b CropBox) Validate(width, height int) error {
	if b.Left < 0 || b.Top < 0 || b.Right > width || b.Bottom > height {
		return fmt.Errorf("crop box %s outside image bounds %dx%d", b, width, height)
	}
	if b.Left >= b.Right || b.Top >= b.Bottom {
		return fmt.Errorf("invalid crop box %s: left must be < right, top must be < bottom", b)
	}
	return nil
}

// Clamp returns the box moved inside a width x height image while keeping
// at least one pixel on each axis.
func (b CropBox) Clamp(width, height int) CropBox {
	b.Left = clamp(b.Left, 0, width-1)
	b.Top = clamp(b.Top, 0, height-1)
	b.Right = clamp(b.Right, b.Left+1, width)
	b.Bottom = clamp(b.Bottom, b.Top+1, height)
	return b
}

// CropResize crops img to box and resizes the crop back to width x height.
//
// Alpha: preserved. The result is a new *image.NRGBA; img is not modified.
func CropResize(img image.Image, box CropBox, width, height int, filter imaging.ResampleFilter) (*image.NRGBA, error) {
	bounds := img.Bounds()
	local := CropBox{
		Left:   box.Left + bounds.Min.X,
		Top:    box.Top + bounds.Min.Y,
		Right:  box.Right + bounds.Min.X,
		Bottom: box.Bottom + bounds.Min.Y,
	}
	if err := box.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}
	cropped := imaging.Crop(img, local.Rect())
	return imaging.Resize(cropped, width, height, filter), nil
}

// ResizeTo resizes img to exactly width x height. Alpha: preserved.
func ResizeTo(img image.Image, width, height int, filter imaging.ResampleFilter) *image.NRGBA {
	return imaging.Resize(img, width, height, filter)
}

// Filters maps configuration names to resampling filters.
var Filters = map[string]imaging.ResampleFilter{
	"nearest":  imaging.NearestNeighbor,
	"linear":   imaging.Linear,
	"box":      imaging.Box,
	"catmull":  imaging.CatmullRom,
	"lanczos":  imaging.Lanczos,
	"bilinear": imaging.Linear,
}

// FilterByName looks up a resampling filter, case-insensitively.
func FilterByName(name string) (imaging.ResampleFilter, error) {
	f, ok := Filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter: %s", name)
	}
	return f, nil
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
