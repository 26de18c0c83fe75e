package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	journalIDKey contextKey = "journal_id"
	volumeKey    contextKey = "volume"
)

// WithRunID annotates context with the import run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the import run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithJournalID annotates context with the journal being imported.
func WithJournalID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, journalIDKey, id)
}

// JournalIDFromContext returns the journal identifier if present.
func JournalIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(journalIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithVolume annotates context with the volume folder name.
func WithVolume(ctx context.Context, volume string) context.Context {
	if volume == "" {
		return ctx
	}
	return context.WithValue(ctx, volumeKey, volume)
}

// VolumeFromContext returns the volume folder name if present.
func VolumeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(volumeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
