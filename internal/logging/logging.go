package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelEnv overrides the level chosen by New, e.g. AIRULES_LOG_LEVEL=info.
const LevelEnv = "AIRULES_LOG_LEVEL"

// New creates the diagnostic logger. Records go to w (stderr when nil) as
// text, or JSON when json is set. Only warnings and errors are shown unless
// verbose is set, since command results are printed separately.
func New(w io.Writer, verbose, json bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if env, ok := os.LookupEnv(LevelEnv); ok && !verbose {
		level = ParseLevel(env, level)
	}

	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel converts a level name to slog.Level, returning fallback for
// names it does not know.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
