// Package main hosts the journalimport CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, wires the catalogue
// registry, outcome ledger and structured logging, then hands journal
// records to the importer. Reporting commands read the ledger back.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// only surfaced here through commands and flags.
package main
