// Package importer drives a batch import.
//
// For every journal record it lists the volume folders, discovers their
// images, fetches the catalogue seed, builds and writes the document and
// relocates the images. Each volume that has images yields exactly one
// Outcome; a failing volume never stops the batch. Volumes can be processed
// in parallel (import.workers) while outcomes keep their planning order.
package importer
