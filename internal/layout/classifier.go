package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	journalPattern        = regexp.MustCompile(`^\d+X?$`)
	prefixedVolumePattern = regexp.MustCompile(`^\d+X?_\d{4}$`)
	bareVolumePattern     = regexp.MustCompile(`^\d{4}$`)
)

// IsJournalFolder reports whether name looks like a journal folder.
func IsJournalFolder(name string) bool {
	return journalPattern.MatchString(name)
}

// IsVolumeFolder reports whether name looks like a volume folder.
func IsVolumeFolder(name string) bool {
	return prefixedVolumePattern.MatchString(name) || bareVolumePattern.MatchString(name)
}

// ListJournalFolders returns the journal folders directly below root.
func ListJournalFolders(root string) ([]string, error) {
	names, err := listDirs(root, IsJournalFolder)
	if err != nil {
		return nil, fmt.Errorf("list journal folders: %w", err)
	}
	return names, nil
}

// ListVolumeFolders returns the volume folders of a journal. A journal folder
// that does not exist yields no volumes.
func ListVolumeFolders(root, journalID string) ([]string, error) {
	journalID = strings.TrimSpace(journalID)
	if journalID == "" {
		return nil, errors.New("list volume folders: journal id is empty")
	}
	names, err := listDirs(filepath.Join(root, journalID), IsVolumeFolder)
	if err != nil {
		return nil, fmt.Errorf("list volume folders for %s: %w", journalID, err)
	}
	return names, nil
}

// VolumeYear extracts the year token from a volume folder name by removing
// the journal identifier and every underscore.
func VolumeYear(journalID, volumeFolder string) string {
	year := strings.ReplaceAll(volumeFolder, journalID, "")
	return strings.ReplaceAll(year, "_", "")
}

// ProcessTitle is the stable name of an imported volume.
func ProcessTitle(journalID, year string) string {
	return journalID + "_" + year
}

func listDirs(dir string, match func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !isDir(dir, entry) || !match(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// isDir follows symlinks so linked volume folders are still picked up.
func isDir(parent string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}
