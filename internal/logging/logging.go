// Package logging configures the zerolog logger used for diagnostic output.
//
// User-facing results go to stdout directly; the logger carries progress
// and debug information on stderr so it never interleaves with piped output.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger writing to w. Verbose enables debug level,
// otherwise only warnings and errors are emitted.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// NewDefault creates the standard stderr logger.
func NewDefault(verbose bool) zerolog.Logger {
	return New(os.Stderr, verbose)
}

// Nop returns a disabled logger for tests and non-verbose paths.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
