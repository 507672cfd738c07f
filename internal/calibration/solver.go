package calibration

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/wallpaper-align/internal/imaging"
	"github.com/ironsheep/wallpaper-align/internal/logging"
)

const (
	// DefaultMaxIterations bounds the number of crop boxes Solve evaluates.
	DefaultMaxIterations = 500

	// DefaultStallLimit is the number of consecutive iterations Solve accepts
	// without improving its best residual.
	DefaultStallLimit = 50
)

// SolverOptions bounds the search. Zero values select the defaults.
type SolverOptions struct {
	MaxIterations int `json:"max_iterations"`
	StallLimit    int `json:"stall_limit"`
}

func (o SolverOptions) withDefaults() SolverOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.StallLimit <= 0 {
		o.StallLimit = DefaultStallLimit
	}
	return o
}

// Solve searches for the crop box that reproduces a device's crop and zoom.
//
// ref is the undistorted pattern, refDist its Locate result and target the
// Locate result of the same pattern as rendered by the device. Solve returns a
// box such that cropping ref to it and resizing back to ref's size measures
// exactly target.
//
// # Algorithm
//
// The initial guess assumes the zoom is negligible, so the border lost on each
// side equals the crop on that side. Each iteration then crops, resizes with
// nearest-neighbour sampling (so checker cells stay chromatic), measures and
// moves every mismatched side by one pixel: outward when the measured border
// is thinner than the target, inward when thicker or missing.
//
// Moving opposite sides together changes the zoom for both, which can make
// the search revisit a box. On the first revisit Solve switches to moving
// only the side with the largest residual per iteration.
//
// # Errors
//
// Returns a *ConvergenceError when the iteration limit is reached, when the
// residual has not improved for StallLimit iterations, or when a box repeats
// in single-side mode.
func Solve(ref image.Image, refDist, target EdgeDistances, opts SolverOptions) (imgutil.CropBox, error) {
	if missing := refDist.Missing(); len(missing) > 0 {
		return imgutil.CropBox{}, fmt.Errorf("reference distances incomplete: %v", refDist)
	}
	if missing := target.Missing(); len(missing) > 0 {
		return imgutil.CropBox{}, fmt.Errorf("target distances incomplete: %v", target)
	}
	opts = opts.withDefaults()

	b := ref.Bounds()
	w, h := b.Dx(), b.Dy()

	box := InitialGuess(refDist, target, w, h).Clamp(w, h)
	logging.Debugf("solver: start %s for target %s", box, target)

	seen := make(map[imgutil.CropBox]bool)
	singleSide := false
	best, stalled := -1, 0
	var measured EdgeDistances
	last := box

	for it := 0; it < opts.MaxIterations; it++ {
		resized, err := imgutil.CropResize(ref, box, w, h, imaging.NearestNeighbor)
		if err != nil {
			return box, fmt.Errorf("solver iteration %d: %w", it, err)
		}
		measured, last = Locate(resized), box
		logging.Debugf("solver: iteration %d box %s measured %s", it, box, measured)

		if measured == target {
			logging.Debugf("solver: converged after %d iterations at %s", it+1, box)
			return box, nil
		}

		if seen[box] {
			if singleSide {
				return box, convergenceError(box, measured, target, it+1, "oscillating")
			}
			logging.Debugf("solver: box %s repeated, switching to single-side steps", box)
			singleSide = true
			seen = make(map[imgutil.CropBox]bool)
		}
		seen[box] = true

		res := residual(measured, target, w+h)
		if best < 0 || res < best {
			best, stalled = res, 0
		} else {
			stalled++
			if stalled > opts.StallLimit {
				return box, convergenceError(box, measured, target, it+1, "stalled")
			}
		}

		box = nextBox(box, measured, target, singleSide, w+h).Clamp(w, h)
	}

	return last, convergenceError(last, measured, target, opts.MaxIterations, "iteration limit")
}

// InitialGuess converts the per-side border difference between reference and
// target into a crop box, without clamping.
func InitialGuess(refDist, target EdgeDistances, width, height int) imgutil.CropBox {
	return imgutil.CropBox{
		Left:   refDist.Left - target.Left,
		Top:    refDist.Top - target.Top,
		Right:  width - (refDist.Right - target.Right),
		Bottom: height - (refDist.Bottom - target.Bottom),
	}
}

// inward returns +1 to crop more on a side, -1 to crop less, 0 to hold.
func inward(measured, target int) int {
	switch {
	case measured == NotFound:
		return 1
	case measured < target:
		return -1
	case measured > target:
		return 1
	}
	return 0
}

// sideError scores a side for single-side mode; a missing edge outranks any
// finite error.
func sideError(measured, target, missing int) int {
	if measured == NotFound {
		return missing
	}
	return abs(measured - target)
}

func residual(measured, target EdgeDistances, missing int) int {
	total := 0
	for _, s := range Sides {
		total += sideError(measured.Get(s), target.Get(s), missing)
	}
	return total
}

func nextBox(box imgutil.CropBox, measured, target EdgeDistances, singleSide bool, missing int) imgutil.CropBox {
	move := [4]int{}
	for i, s := range Sides {
		move[i] = inward(measured.Get(s), target.Get(s))
	}

	if singleSide {
		worst, worstErr := 0, -1
		for i, s := range Sides {
			if e := sideError(measured.Get(s), target.Get(s), missing); e > worstErr {
				worst, worstErr = i, e
			}
		}
		for i := range move {
			if i != worst {
				move[i] = 0
			}
		}
	}

	box.Left += move[SideLeft]
	box.Right -= move[SideRight]
	box.Top += move[SideTop]
	box.Bottom -= move[SideBottom]
	return box
}

func convergenceError(box imgutil.CropBox, measured, target EdgeDistances, iterations int, reason string) *ConvergenceError {
	e := &ConvergenceError{
		Box:        box,
		Measured:   measured,
		Iterations: iterations,
		Reason:     reason,
	}
	for i, s := range Sides {
		e.Deltas[i] = measured.Get(s) - target.Get(s)
	}
	return e
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
