package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// SetupLogger configures zerolog with pretty console output on stderr.
// debug overrides level.
func SetupLogger(level string, debug bool) (zerolog.Logger, error) {
	lvl, err := parseLevel(level, debug)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

// SetupStructuredLogger configures zerolog for structured (JSON) output to w
func SetupStructuredLogger(w io.Writer, level string, debug bool) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := parseLevel(level, debug)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

// SetupUILogger returns the logger used by the terminal UI. The terminal
// belongs to the UI, so it writes to w, normally a log file.
func SetupUILogger(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "setforbots",
	})
}

func parseLevel(level string, debug bool) (zerolog.Level, error) {
	if debug {
		return zerolog.DebugLevel, nil
	}
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
