package profile

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/wallpaper-align/internal/calibration"
	"github.com/ironsheep/wallpaper-align/internal/imaging"
)

// MaskOptions controls how the marker's bounding box becomes a mask.
type MaskOptions struct {
	// Circle fills a disk of diameter equal to the scaled box width instead
	// of the box itself.
	Circle bool

	// ScalePercent scales the box around its (offset) centre. 100 keeps the
	// detected size. Must be positive.
	ScalePercent int

	// Offset moves the centre of the box, in pixels.
	Offset image.Point
}

// FindMarker returns the bounding box of pure-black pixels inside the
// calibration border of a rendered lock screen. The returned rectangle is
// inclusive of every black pixel (Max is one past the last pixel).
//
// Alpha: ignored.
func FindMarker(marker image.Image) (image.Rectangle, error) {
	b := marker.Bounds()
	w, h := b.Dx(), b.Dy()
	border := calibration.BorderSize(w)

	minX, minY, maxX, maxY := w, h, 0, 0
	for y := border; y < h-border; y++ {
		for x := border; x < w-border; x++ {
			if !imaging.PixelAt(marker, b.Min.X+x, b.Min.Y+y).Black() {
				continue
			}
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}, &calibration.MarkerNotFoundError{
			Stage:  "mask",
			Input:  "marker image",
			Region: "interior",
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}

// ExtractMask builds a visibility mask from the black "hole" in a rendered
// lock screen.
//
// The marker's bounding box (FindMarker) is moved by opts.Offset, scaled by
// opts.ScalePercent around its centre and clamped to the image. Pixels inside
// the box (or, with opts.Circle, within half the scaled width of the centre)
// are 255; all others 0.
//
// Returns the mask, which has the marker image's size and origin (0,0), and
// the scaled, clamped box.
//
// # Errors
//
//   - *calibration.MarkerNotFoundError if the interior has no black pixel
//   - an error if ScalePercent is not positive or the offset box misses the image
func ExtractMask(marker image.Image, opts MaskOptions) (*image.Gray, image.Rectangle, error) {
	if opts.ScalePercent <= 0 {
		return nil, image.Rectangle{}, fmt.Errorf("mask scale must be positive, got %d%%", opts.ScalePercent)
	}

	found, err := FindMarker(marker)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	w, h := marker.Bounds().Dx(), marker.Bounds().Dy()
	scale := float64(opts.ScalePercent) / 100

	cx := float64(found.Min.X+found.Max.X)/2 + float64(opts.Offset.X)
	cy := float64(found.Min.Y+found.Max.Y)/2 + float64(opts.Offset.Y)
	halfW := float64(found.Dx()) / 2 * scale
	halfH := float64(found.Dy()) / 2 * scale

	box := image.Rect(
		int(math.Round(cx-halfW)), int(math.Round(cy-halfH)),
		int(math.Round(cx+halfW)), int(math.Round(cy+halfH)),
	).Intersect(image.Rect(0, 0, w, h))
	if box.Empty() {
		return nil, image.Rectangle{}, fmt.Errorf("scaled mask region %v lies outside the %dx%d image", box, w, h)
	}

	mask := image.NewGray(image.Rect(0, 0, w, h))
	if opts.Circle {
		fillDisk(mask, cx, cy, halfW)
	} else {
		fillRect(mask, box)
	}
	return mask, box, nil
}

func fillRect(mask *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+mask.Rect.Dx()]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = 255
		}
	}
}

// fillDisk marks every pixel whose centre is within radius of (cx, cy).
func fillDisk(mask *image.Gray, cx, cy, radius float64) {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	y0 := max(0, int(math.Floor(cy-radius)))
	y1 := min(h, int(math.Ceil(cy+radius))+1)
	x0 := max(0, int(math.Floor(cx-radius)))
	x1 := min(w, int(math.Ceil(cx+radius))+1)
	r2 := radius * radius

	for y := y0; y < y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy <= r2 {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
}

// MaskBounds returns the smallest rectangle containing every non-zero mask
// pixel, or an empty rectangle for an all-zero mask.
func MaskBounds(mask *image.Gray) image.Rectangle {
	b := mask.Bounds()
	var r image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}

// CountSet returns the number of non-zero mask pixels.
func CountSet(mask *image.Gray) int {
	n := 0
	for _, v := range mask.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}
