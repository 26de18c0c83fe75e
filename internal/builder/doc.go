// Package builder turns a catalogue seed and the discovered images of one
// volume into the final document tree and the naming plan for its images.
package builder
