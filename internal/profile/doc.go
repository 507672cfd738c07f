// Package profile turns lock screen screenshots into a device profile: the
// region of the wallpaper left visible around the clock and widgets, and the
// darkening the lock screen applies.
//
// A marker screenshot shows a wallpaper that is white except for a black
// "hole" the user positions where the wallpaper should stay visible.
// ExtractMask finds the hole and builds a mask from it; Composite applies the
// mask to a calibrated wallpaper.
//
// A tint screenshot shows a plain white wallpaper. DetectTint measures how
// much darker it appears; ApplyTint reproduces that darkening.
package profile
