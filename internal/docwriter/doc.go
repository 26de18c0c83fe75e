// Package docwriter persists document trees as JSON. Every node gets an
// identifier (LOG_nnnn for the logical tree in pre-order, PHYS_nnnn for the
// physical tree with the root at 0000) and references are written as target
// identifiers.
package docwriter
