// Package config loads, normalizes, and validates importer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// JOURNALIMPORT_CATALOGUE_API_KEY. The Config type centralizes every knob the
// importer and CLI need: the source and destination directories, the
// catalogue sources, the metadata type names used when building documents,
// and the image import strategy.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors. The importer receives the
// Config value explicitly; nothing here is process-wide state.
package config
