package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the service logger: JSON for production, a pretty
// line format for local development.
func NewLogger(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var h slog.Handler
	if cfg.LogFormat == "pretty" {
		h = newPrettyHandler(os.Stdout, level)
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h).With("service", "gymgate")
}
