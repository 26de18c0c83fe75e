// Package preflight provides readiness checks for the filesystem paths and
// catalogue an import depends on.
//
// The CLI "journalimport preflight" command prints every result; "import"
// runs the same checks first and refuses to start when one fails, so a batch
// does not mark every volume invalidData because of a single bad path.
package preflight
