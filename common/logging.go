package common

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger  zerolog.Logger
	verbose bool
)

func init() {
	SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// Logger returns the package logger. Every diagnostic of the tool goes
// through it.
func Logger() *zerolog.Logger {
	return &logger
}

// SetOutput sends log lines to w, keeping the current level.
func SetOutput(w io.Writer) {
	logger = zerolog.New(w).With().Timestamp().Logger().Level(level())
}

// SetVerbose switches the logger to debug level.
func SetVerbose(v bool) {
	verbose = v
	logger = logger.Level(level())
}

func level() zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
