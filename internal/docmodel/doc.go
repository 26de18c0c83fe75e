// Package docmodel holds the bibliographic document tree written for every
// imported volume.
//
// A Document has a logical tree (anchor, volume, issues) and a physical tree
// (a root with one page per image). Logical nodes point at the pages they
// contain through "logical_physical" references. The Ruleset names the
// metadata and structure types a document may use; seeds returned by a
// catalogue are decoded and validated here before the builder extends them.
package docmodel
