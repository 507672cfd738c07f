package calibration

import (
	"fmt"
	"image"

	"github.com/ironsheep/wallpaper-align/internal/imaging"
)

// NotFound marks an edge distance whose scan found no crossing.
const NotFound = -1

// Side identifies one of the four edges of an image.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

// Sides lists every side in EdgeDistances order.
var Sides = [4]Side{SideLeft, SideRight, SideTop, SideBottom}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// EdgeDistances holds, per side, the number of pixels between the outer
// image edge and the first border-to-interior crossing on the midline.
// For an undistorted pattern every side equals the border thickness.
type EdgeDistances struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Get returns the distance for one side.
func (d EdgeDistances) Get(s Side) int {
	switch s {
	case SideLeft:
		return d.Left
	case SideRight:
		return d.Right
	case SideTop:
		return d.Top
	default:
		return d.Bottom
	}
}

// Missing returns the sides whose scan found nothing.
func (d EdgeDistances) Missing() []Side {
	var missing []Side
	for _, s := range Sides {
		if d.Get(s) == NotFound {
			missing = append(missing, s)
		}
	}
	return missing
}

// Validate returns a *MarkerNotFoundError if any side is NotFound.
func (d EdgeDistances) Validate(stage, input string) error {
	if missing := d.Missing(); len(missing) > 0 {
		return &MarkerNotFoundError{Stage: stage, Input: input, Sides: missing}
	}
	return nil
}

func (d EdgeDistances) String() string {
	return fmt.Sprintf("l=%d r=%d t=%d b=%d", d.Left, d.Right, d.Top, d.Bottom)
}

// Locate finds the inner edges of a calibration pattern's checkerboard band.
//
// Four scans run along the horizontal midline (row h/2) and vertical midline
// (column w/2), each from the outer edge toward the centre. A scan stops at
// the first pixel that forms an imaging.SameMarker pair with its next inward
// neighbour. Sides without such a pair are NotFound.
//
// Alpha: ignored.
func Locate(img image.Image) EdgeDistances {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := w/2, h/2

	at := func(x, y int) imaging.Pixel {
		return imaging.PixelAt(img, b.Min.X+x, b.Min.Y+y)
	}

	d := EdgeDistances{Left: NotFound, Right: NotFound, Top: NotFound, Bottom: NotFound}

	for x := 0; x < w/2; x++ {
		if imaging.SameMarker(at(x, cy), at(x+1, cy)) {
			d.Left = x
			break
		}
	}
	for x := w - 1; x > w/2; x-- {
		if imaging.SameMarker(at(x, cy), at(x-1, cy)) {
			d.Right = w - 1 - x
			break
		}
	}
	for y := 0; y < h/2; y++ {
		if imaging.SameMarker(at(cx, y), at(cx, y+1)) {
			d.Top = y
			break
		}
	}
	for y := h - 1; y > h/2; y-- {
		if imaging.SameMarker(at(cx, y), at(cx, y-1)) {
			d.Bottom = h - 1 - y
			break
		}
	}
	return d
}

// Crossings returns the image-relative points where Locate found each
// defined side's crossing, in Sides order.
func (d EdgeDistances) Crossings(width, height int) []image.Point {
	cx, cy := width/2, height/2
	var pts []image.Point
	if d.Left != NotFound {
		pts = append(pts, image.Pt(d.Left, cy))
	}
	if d.Right != NotFound {
		pts = append(pts, image.Pt(width-1-d.Right, cy))
	}
	if d.Top != NotFound {
		pts = append(pts, image.Pt(cx, d.Top))
	}
	if d.Bottom != NotFound {
		pts = append(pts, image.Pt(cx, height-1-d.Bottom))
	}
	return pts
}
