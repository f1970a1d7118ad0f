// Package logging builds the slog loggers used by the binaries and carries
// them through contexts.
//
//	logger := logging.NewLogger()
//	logger.Info("api started", slog.String("version", version))
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, logging.FromContext(ctx)).Info("processing request")
//	}
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"mediawatch/internal/handler/http/requestid"
)

// Level parses LOG_LEVEL (debug, info, warn, error). Anything else is info.
func Level() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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

// NewLogger creates a JSON logger on stdout at Level().
func NewLogger() *slog.Logger {
	return New(os.Stdout, "json", Level())
}

// NewTextLogger creates a human-readable logger for local development.
func NewTextLogger() *slog.Logger {
	return New(os.Stdout, "text", Level())
}

// New creates a logger writing format ("json" or "text") to w. Source
// locations are added at debug level.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithRequestID adds the request ID from ctx, if any.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With(slog.String("request_id", reqID))
}

// FromContext returns the logger stored by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
