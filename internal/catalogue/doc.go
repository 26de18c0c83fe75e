// Package catalogue fetches seed records for journals.
//
// A Registry maps configured catalogue names to sources. The http source
// queries a JSON endpoint that returns seed documents; the directory source
// reads pre-exported seeds from disk, which is handy for offline imports and
// tests. Raw records are cached per identifier for the life of the registry,
// so every volume of a journal costs a single lookup.
package catalogue
