package logging

import (
	"context"
	"log/slog"

	"journalimport/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for the import run identifier.
	FieldRunID = "run_id"
	// FieldJournalID is the standardized key for journal identifiers.
	FieldJournalID = "journal_id"
	// FieldVolume is the standardized key for volume folder names.
	FieldVolume = "volume"
	// FieldProcessTitle is the standardized key for the derived process title.
	FieldProcessTitle = "process_title"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := services.JournalIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJournalID, id))
	}
	if volume, ok := services.VolumeFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldVolume, volume))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
