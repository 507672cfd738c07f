package calibration

import (
	"fmt"
	"strings"

	"github.com/ironsheep/wallpaper-align/internal/imaging"
)

// MarkerNotFoundError reports a scan that covered its whole search area
// without finding the expected marker.
type MarkerNotFoundError struct {
	// Stage is the pipeline step that ran the scan, e.g. "calibrate".
	Stage string

	// Input names the image that was scanned (usually a config key or path).
	Input string

	// Sides lists the edge scans that found no crossing. Empty when the
	// failure is a region scan.
	Sides []Side

	// Region describes a failed region scan, e.g. "interior".
	Region string
}

func (e *MarkerNotFoundError) Error() string {
	var where string
	if len(e.Sides) > 0 {
		names := make([]string, len(e.Sides))
		for i, s := range e.Sides {
			names[i] = s.String()
		}
		where = "no marker edge on side(s) " + strings.Join(names, ", ")
	} else {
		where = fmt.Sprintf("no black marker pixel in %s region", e.Region)
	}
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Input, where)
}

// ConvergenceError reports a solver run that stopped without reaching a crop
// box whose measured edge distances match the target.
type ConvergenceError struct {
	// Box is the last crop box evaluated.
	Box imaging.CropBox

	// Measured holds the edge distances produced by Box.
	Measured EdgeDistances

	// Deltas is Measured minus target per side (left, right, top, bottom).
	Deltas [4]int

	// Iterations is the number of boxes evaluated.
	Iterations int

	// Reason is "iteration limit", "stalled" or "oscillating".
	Reason string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solver did not converge (%s) after %d iterations: last box %s, deltas l=%d r=%d t=%d b=%d",
		e.Reason, e.Iterations, e.Box, e.Deltas[0], e.Deltas[1], e.Deltas[2], e.Deltas[3])
}
