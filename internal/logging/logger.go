package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger on stdout.
func New(logLevel string, json bool) *slog.Logger {
	return NewWriter(os.Stdout, logLevel, json)
}

func NewWriter(w io.Writer, logLevel string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(logLevel), AddSource: true}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return NewWriter(io.Discard, "error", false)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
