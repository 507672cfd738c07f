// Package imaging provides the image plumbing shared by the calibration,
// profile and server packages.
//
// This package implements decoding and atomic encoding of image files, a
// path-keyed image cache, pixel access in non-premultiplied form, crop boxes
// with crop-and-resize, and the diagnostic overlay. All operations work with
// standard Go image.Image types and use a coordinate system where (0,0) is at
// the top-left corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (Left,Top) is inclusive and (Right,Bottom) exclusive
//
// Functions taking a CropBox interpret it relative to the image's top-left
// corner, whatever the image's Bounds().Min.
//
// # Alpha
//
// Each transformation states its alpha policy in its doc comment: "preserved",
// "dropped" or "ignored". Predicates such as SameMarker compare colour channels
// only.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and never modify their inputs.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Crop boxes outside the image bounds or with no area
//   - Unknown resample filter names or output extensions
//   - File I/O errors during image loading
//   - Images with transparency saved to a format without alpha; Save
//     recovers from this *UnsupportedFormatError by flattening once
package imaging
