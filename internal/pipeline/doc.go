// Package pipeline runs the wallpaper-align stages against a loaded
// configuration.
//
// Each stage opens its inputs, computes every output in memory and writes
// the outputs only once all computation has succeeded, so a failed run leaves
// previous results untouched.
package pipeline
