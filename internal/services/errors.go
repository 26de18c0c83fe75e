package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCatalogueLookup = errors.New("catalogue lookup failed")
	ErrInvalidSeed     = errors.New("invalid seed document")
	ErrMetadataMapping = errors.New("metadata mapping error")
	ErrFileIO          = errors.New("file io error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
)

// Wrap builds an error message that includes step context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsVolumeFailure reports whether err belongs to the expected failure modes
// that end a single volume with an invalidData outcome. Anything else is a
// fault in the caller.
func IsVolumeFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrCatalogueLookup),
		errors.Is(err, ErrInvalidSeed),
		errors.Is(err, ErrMetadataMapping),
		errors.Is(err, ErrFileIO):
		return true
	default:
		return false
	}
}

// Kind returns a short label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCatalogueLookup):
		return "catalogue_lookup_failed"
	case errors.Is(err, ErrInvalidSeed):
		return "invalid_seed_document"
	case errors.Is(err, ErrMetadataMapping):
		return "metadata_mapping_error"
	case errors.Is(err, ErrFileIO):
		return "file_io"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "validation"
	}
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
