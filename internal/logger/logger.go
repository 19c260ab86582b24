package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/cosmetic-storefront/internal/config"
)

// NewLogger builds the application's structured JSON logger from config
func NewLogger(cfg *config.Config) *slog.Logger {
	return NewWithLevel(cfg.Logging.Level)
}

// NewWithLevel builds a JSON slog.Logger for the given level name.
// Unknown level names fall back to info. Source locations are attached
// only at debug level to keep production log lines compact.
func NewWithLevel(levelName string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)

	logger.Info("logger initialized", "level", level)

	return logger
}
