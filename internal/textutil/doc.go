// Package textutil provides the name transformations shared by the document
// builder and the image relocator.
//
// Both sides must agree on the destination name of every image, so the rules
// live here and nowhere else.
package textutil
