// Package log builds the process root logger. Components receive child
// loggers via .With().Str("component", ...) rather than a global.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a root logger for the given level and format.
// Valid levels: "trace", "debug", "info", "warn", "error". Anything else
// falls back to info. Format "console" renders human-readable output;
// everything else emits JSON.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}
