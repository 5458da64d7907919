package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogging installs the default slog logger. Development gets readable
// text output, everything else JSON.
func SetupLogging(cfg *Config) *slog.Logger {
	return setupLogging(os.Stdout, cfg.IsDevelopment(), cfg.LogLevel)
}

func setupLogging(w io.Writer, devMode bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if devMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
