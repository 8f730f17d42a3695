package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the package level logger used across the application.
var L = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Set replaces the default logger with the provided one.
func Set(l *slog.Logger) {
	if l != nil {
		L = l
	}
}

// New builds a logger writing to w. format is "text" or "json"; unknown
// levels fall back to info.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
