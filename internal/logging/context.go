package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	appIDKey contextKey = "app_id"
	stageKey contextKey = "stage"
)

// WithAppID annotates context with the application record identifier.
func WithAppID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, appIDKey, id)
}

// AppIDFromContext extracts the application identifier if present.
func AppIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(appIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithContext returns a logger enriched with any identifiers carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := AppIDFromContext(ctx); ok {
		logger = logger.With(String(FieldAppID, id))
	}
	if stage, ok := StageFromContext(ctx); ok {
		logger = logger.With(String(FieldStage, stage))
	}
	return logger
}
