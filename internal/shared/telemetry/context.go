package telemetry

import (
	"context"
	"log/slog"
)

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// InfoContext is Info with the request id from ctx added to fields.
func InfoContext(ctx context.Context, msg string, fields map[string]any) {
	writeContext(ctx, slog.LevelInfo, msg, fields)
}

// WarnContext is Warn with the request id from ctx added to fields.
func WarnContext(ctx context.Context, msg string, fields map[string]any) {
	writeContext(ctx, slog.LevelWarn, msg, fields)
}

// ErrorContext is Error with the request id from ctx added to fields.
func ErrorContext(ctx context.Context, msg string, fields map[string]any) {
	writeContext(ctx, slog.LevelError, msg, fields)
}
