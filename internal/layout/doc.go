// Package layout recognises the folder naming conventions of the incoming
// periodical tree.
//
// The base directory holds one folder per journal, named after the journal's
// catalogue identifier (digits with an optional trailing X). Each journal
// folder holds one folder per volume, named either after the bare year or the
// journal identifier followed by an underscore and the year.
package layout
