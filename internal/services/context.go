package services

import "context"

type contextKey string

const (
	itemKeyKey   contextKey = "item_key"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithItemKey annotates context with the item position key.
func WithItemKey(ctx context.Context, key int) context.Context {
	return context.WithValue(ctx, itemKeyKey, key)
}

// ItemKeyFromContext extracts the item position key if present.
func ItemKeyFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(itemKeyKey).(int)
	return v, ok
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
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
