// Package logger builds the structured JSON logger shared by both binaries.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// NewLogger creates a JSON slog.Logger on stdout tagged with the application
// name and environment.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	if cfg.Application.Name != "" {
		logger = logger.With("app", cfg.Application.Name)
	}
	if cfg.Application.Env != "" {
		logger = logger.With("env", cfg.Application.Env)
	}

	logger.Info("logger initialized", "level", level)
	return logger
}

// ParseLevel maps a LOG_LEVEL value to a slog level. It accepts the slog
// names with offsets ("debug", "WARN+2") plus "warning", and falls back to
// info for anything else.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// WithCorrelation returns base annotated with the correlation id carried by
// ctx, or base itself when there is none.
func WithCorrelation(ctx context.Context, base *slog.Logger) *slog.Logger {
	if id := shared.CorrelationID(ctx); id != "" {
		return base.With("correlation_id", id)
	}
	return base
}
