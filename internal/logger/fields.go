package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the model provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "ai_model"
	// FieldRunID identifies one pass of the analysis pipeline.
	FieldRunID = "run_id"
)

// CommonFields returns the provider and model fields, skipping empty values.
func CommonFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if p := strings.TrimSpace(provider); p != "" {
		fields = append(fields, zap.String(FieldProvider, p))
	}
	if m := strings.TrimSpace(model); m != "" {
		fields = append(fields, zap.String(FieldModel, m))
	}
	return fields
}

// WithCommonFields attaches the provider and model fields to the logger.
// A nil logger becomes a no-op logger.
func WithCommonFields(l *zap.Logger, provider, model string) *zap.Logger {
	l = OrNop(l)
	fields := CommonFields(provider, model)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
