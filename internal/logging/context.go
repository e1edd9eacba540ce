package logging

import (
	"context"
	"log/slog"

	"vidscribe/internal/asr"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldResolutionID is the standardized structured logging key for resolution identifiers.
	FieldResolutionID = "resolution_id"
	// FieldProvider is the standardized structured logging key for the active ASR provider.
	FieldProvider = "provider"
	// FieldPlatform is the standardized structured logging key for the video platform.
	FieldPlatform = "platform"
	// FieldSource is the standardized structured logging key for transcript provenance.
	FieldSource = "source"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := asr.ResolutionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldResolutionID, id))
	}
	if provider, ok := asr.ProviderFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldProvider, provider))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
