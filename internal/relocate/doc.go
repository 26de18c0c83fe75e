// Package relocate copies or moves the images of an imported volume into the
// destination images folder and removes source folders emptied by a move.
package relocate
