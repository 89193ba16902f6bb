package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

// Config selects level and output format of the application logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// New builds a structured logger.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

// NewFromEnv reads LOG_LEVEL and LOG_FORMAT. Production defaults to JSON.
func NewFromEnv() *slog.Logger {
	format := "json"
	if env.IsDev() {
		format = "text"
	}
	return New(Config{
		Level:  env.GetEnv("LOG_LEVEL", "info"),
		Format: env.GetEnv("LOG_FORMAT", format),
	})
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
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
