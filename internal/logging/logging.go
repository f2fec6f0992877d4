// Package logging builds the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// New returns a console logger at the given level. If filePath is
// non-empty, JSON lines are additionally appended there. The level is
// applied globally so SetLevel can adjust it at runtime.
func New(level, filePath string) zerolog.Logger {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.ErrorFieldName = "err"
	zerolog.SetGlobalLevel(ParseLevel(level))

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat},
	}
	if strings.TrimSpace(filePath) != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: cannot open log file %q: %v\n", filePath, err)
		} else {
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger()
}

// SetLevel adjusts the global log level at runtime (config reload).
func SetLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
