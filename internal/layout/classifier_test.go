package layout

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
}

func TestListJournalFolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "170621391", "12345X", "notes", "123_1925", "X123")
	if err := os.WriteFile(filepath.Join(root, "999"), []byte("file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ListJournalFolders(root)
	if err != nil {
		t.Fatalf("ListJournalFolders: %v", err)
	}
	want := []string{"12345X", "170621391"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListVolumeFolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"170621391/170621391_1925",
		"170621391/1926",
		"170621391/170621391X_1927",
		"170621391/scans",
		"170621391/170621391_19",
		"170621391/1925/Supplement",
	)
	// Files with volume-like names are not volumes.
	if err := os.WriteFile(filepath.Join(root, "170621391", "1930"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ListVolumeFolders(root, "170621391")
	if err != nil {
		t.Fatalf("ListVolumeFolders: %v", err)
	}
	want := []string{"170621391X_1927", "170621391_1925", "1925", "1926"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListVolumeFoldersMissingJournal(t *testing.T) {
	got, err := ListVolumeFolders(t.TempDir(), "404")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no volumes, got %v", got)
	}
}

func TestListVolumeFoldersRejectsEmptyJournal(t *testing.T) {
	if _, err := ListVolumeFolders(t.TempDir(), "  "); err == nil {
		t.Fatal("expected error for empty journal id")
	}
}

func TestVolumeYear(t *testing.T) {
	cases := []struct {
		journal string
		volume  string
		want    string
	}{
		{"170621391", "170621391_1925", "1925"},
		{"170621391", "1926", "1926"},
		{"12345X", "12345X_1901", "1901"},
	}
	for _, tc := range cases {
		if got := VolumeYear(tc.journal, tc.volume); got != tc.want {
			t.Fatalf("VolumeYear(%q, %q) = %q, want %q", tc.journal, tc.volume, got, tc.want)
		}
	}
}

func TestProcessTitle(t *testing.T) {
	if got := ProcessTitle("170621391", "1925"); got != "170621391_1925" {
		t.Fatalf("unexpected process title %q", got)
	}
}
