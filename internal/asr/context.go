package asr

import "context"

type contextKey string

const (
	resolutionIDKey contextKey = "resolution_id"
	providerKey     contextKey = "provider"
)

// WithResolutionID annotates context with the resolution identifier.
func WithResolutionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, resolutionIDKey, id)
}

// ResolutionIDFromContext extracts the resolution identifier if present.
func ResolutionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(resolutionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithProvider annotates context with the active provider name.
func WithProvider(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, providerKey, name)
}

// ProviderFromContext returns the active provider name if present.
func ProviderFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(providerKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
