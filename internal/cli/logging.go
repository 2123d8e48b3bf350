package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"wahlnetz-service/internal/config"
)

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
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

// discardUnlessDebug is the log sink for full screen commands.
func discardUnlessDebug(cfg config.Config) io.Writer {
	if parseLevel(cfg.Log.Level) == slog.LevelDebug {
		return os.Stderr
	}
	return io.Discard
}
