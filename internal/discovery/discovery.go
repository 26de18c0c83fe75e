package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"journalimport/internal/textutil"
)

// maxDepth counts path segments below the volume folder: a file directly in
// the folder has depth 1, a file in an issue sub-folder has depth 2.
const maxDepth = 2

// ImageFile is a discovered regular file.
type ImageFile struct {
	// Path is the absolute file path.
	Path string
	// Parent is the name of the folder directly containing the file.
	Parent string
	// Name is the file's base name.
	Name string
}

// Nested reports whether the file sits in an issue sub-folder of volumeFolder.
func (f ImageFile) Nested(volumeFolder string) bool {
	return f.Parent != volumeFolder
}

// TargetName returns the destination base name of the file. Files from an
// issue sub-folder are prefixed with the sanitised sub-folder name so names
// from different issues cannot collide.
func (f ImageFile) TargetName(volumeFolder string) string {
	if f.Nested(volumeFolder) {
		return textutil.PrefixedName(f.Parent, f.Name)
	}
	return textutil.NormalizeName(f.Name)
}

// Options tunes discovery.
type Options struct {
	// Exclude holds doublestar patterns matched against slash-separated paths
	// relative to the volume folder. Matching directories are not descended.
	Exclude []string
}

// ListFiles returns the files of volumeDir sorted by full path. An empty
// result means the volume has nothing to import.
func ListFiles(volumeDir string, opts Options) ([]ImageFile, error) {
	root, err := filepath.Abs(volumeDir)
	if err != nil {
		return nil, fmt.Errorf("resolve volume folder: %w", err)
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	// WalkDir does not descend into a symlinked root; walk the target but
	// report paths below the folder as named.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve volume folder: %w", err)
	}

	var files []ImageFile
	err = filepath.WalkDir(walkRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == walkRoot {
			return nil
		}
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/") + 1

		if excluded(opts.Exclude, rel) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if depth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || depth > maxDepth {
			return nil
		}
		shown := filepath.Join(root, filepath.FromSlash(rel))
		files = append(files, ImageFile{
			Path:   shown,
			Parent: filepath.Base(filepath.Dir(shown)),
			Name:   entry.Name(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files in %s: %w", volumeDir, err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
