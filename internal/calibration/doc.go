// Package calibration infers a lock screen's crop and zoom from a calibration
// pattern.
//
// The pattern (GeneratePattern) is a solid interior surrounded by a
// one-pixel checkerboard band. Shown as a lock screen wallpaper, the device
// crops and stretches it; a screenshot of the result goes to Locate, which
// measures how thick the band appears on each side. Solve then searches for
// the crop box that, applied to the undistorted pattern, reproduces those
// measurements. Applying the same box to any wallpaper pre-compensates for
// the device.
//
// # Coordinate System
//
// Distances are measured in pixels from each outer image edge along the
// midlines (row height/2, column width/2). Crop boxes use inclusive Left/Top
// and exclusive Right/Bottom coordinates.
//
// # Errors
//
// Scans that find no marker produce *MarkerNotFoundError; a search that
// cannot settle produces *ConvergenceError. Both are meant to abort the run.
package calibration
