// Package ledger keeps the history of import runs in SQLite.
//
// Every run gets a row in runs and every attempted volume a row in outcomes,
// so operators can look up why a volume ended as invalidData long after the
// batch finished.
package ledger
