// Package discovery enumerates the image files of a volume folder in a stable
// order. Files sit either directly in the volume folder or one sub-folder deep,
// where the sub-folder names the issue they belong to. Deeper levels are not
// part of the layout and are skipped.
package discovery
