// Package services defines shared utilities consumed by the import pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, journal IDs, and volume folder names
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent outcome statuses (completed vs invalidData).
//
// Use these helpers when wiring new pipeline steps so operational behaviour
// (error handling, observability) stays uniform across the importer.
package services
