// Package logging wraps the standard logger with a debug switch and optional
// rotating file output.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogLevel enables debug logging when set to "debug".
const EnvLogLevel = "WALLPAPER_ALIGN_LOG_LEVEL"

var debug atomic.Bool

// Options configures the process logger.
type Options struct {
	// File, when non-empty, sends log output to a size-rotated file instead
	// of stderr.
	File string

	// Debug enables Debugf output.
	Debug bool
}

// Setup configures the standard logger. It returns a closer for the log file,
// which is a no-op when logging to stderr. Closing the file sends later
// output back to stderr.
func Setup(opts Options) io.Closer {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	SetDebug(opts.Debug || os.Getenv(EnvLogLevel) == "debug")

	if opts.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(lj)
	return fileCloser{lj}
}

// SetDebug toggles debug output.
func SetDebug(on bool) {
	debug.Store(on)
}

// DebugEnabled reports whether Debugf writes anything.
func DebugEnabled() bool {
	return debug.Load()
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println()
func Println(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
}

// Debugf logs with a [DEBUG] prefix when debug output is enabled.
func Debugf(format string, v ...interface{}) {
	if !debug.Load() {
		return
	}
	log.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
}

// Warnf logs with a [WARN] prefix.
func Warnf(format string, v ...interface{}) {
	log.Output(2, "[WARN] "+fmt.Sprintf(format, v...))
}

type fileCloser struct {
	lj *lumberjack.Logger
}

func (c fileCloser) Close() error {
	log.SetOutput(os.Stderr)
	return c.lj.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
