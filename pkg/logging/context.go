package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = 0

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithRun tags the context logger with the import run id.
func WithRun(ctx context.Context, runID string) context.Context {
	return WithField(ctx, "run_id", runID)
}

// WithSheet adds the sheet being processed.
func WithSheet(ctx context.Context, sheet string) context.Context {
	return WithField(ctx, "sheet", sheet)
}

// WithMode adds the reconciliation mode.
func WithMode(ctx context.Context, mode string) context.Context {
	return WithField(ctx, "mode", mode)
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	newLogger := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &newLogger)
}
