package catalogue

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"journalimport/internal/services"
)

// DirectorySource reads seeds from {dir}/{identifier}.json. The search field
// is ignored.
type DirectorySource struct {
	dir string
}

// NewDirectorySource returns a source rooted at dir.
func NewDirectorySource(dir string) (*DirectorySource, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("catalogue: directory is required")
	}
	return &DirectorySource{dir: dir}, nil
}

// Fetch implements Source.
func (s *DirectorySource) Fetch(ctx context.Context, _ string, identifier string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if identifier == "" || strings.ContainsAny(identifier, `/\`) || identifier == "." || identifier == ".." {
		return nil, fmt.Errorf("catalogue: invalid identifier %q", identifier)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, identifier+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalogue: no record for %s: %w", identifier, services.ErrNotFound)
		}
		return nil, fmt.Errorf("catalogue: read record: %w", err)
	}
	return data, nil
}

// Check verifies the seed directory exists.
func (s *DirectorySource) Check(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("catalogue: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("catalogue: %s is not a directory", s.dir)
	}
	return nil
}
