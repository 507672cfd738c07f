// Command wallpaper-align fits a wallpaper to a phone's lock and password
// screens.
//
// Usage:
//
//	wallpaper-align pattern              # write the calibration pattern
//	wallpaper-align calibrate            # solve the crop from two screenshots
//	wallpaper-align profile --auto-tint  # cut out the visible region
//	wallpaper-align run --circle         # calibrate and profile in one pass
//	wallpaper-align serve                # MCP tool server on stdio
//
// Every command reads its paths from config.json (see --config).
package main

import (
	"fmt"
	"os"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	opts := &rootOptions{}
	if err := execute(newRootCmd(opts), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
