package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func relPaths(t *testing.T, root string, files []ImageFile) []string {
	t.Helper()
	absRoot, err := filepath.Abs(root)
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(absRoot, f.Path)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestListFilesOrderAndDepth(t *testing.T) {
	root := filepath.Join(t.TempDir(), "1925")
	writeFiles(t, root,
		"0002.tif",
		"Supplement/0001.tif",
		"0001.tif",
		"Heft 2/0001.tif",
		"Heft 2/deep/ignored.tif",
	)

	files, err := ListFiles(root, Options{})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	got := relPaths(t, root, files)
	want := []string{"0001.tif", "0002.tif", "Heft 2/0001.tif", "Supplement/0001.tif"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if files[0].Parent != "1925" || files[3].Parent != "Supplement" {
		t.Fatalf("unexpected parents: %+v", files)
	}
}

func TestListFilesDeterministic(t *testing.T) {
	root := filepath.Join(t.TempDir(), "1925")
	writeFiles(t, root, "b.tif", "a/2.tif", "a/1.tif", "c.tif", "B/1.tif")

	first, err := ListFiles(root, Options{})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ListFiles(root, Options{})
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("discovery order changed between runs: %v vs %v", first, again)
		}
	}
}

func TestListFilesExcludes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "1925")
	writeFiles(t, root,
		"0001.tif",
		".DS_Store",
		"Thumbs.db",
		"Supplement/Thumbs.db",
		"Supplement/0001.tif",
		".cache/0001.tif",
	)

	files, err := ListFiles(root, Options{Exclude: []string{"**/.*", "**/Thumbs.db"}})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	got := relPaths(t, root, files)
	want := []string{"0001.tif", "Supplement/0001.tif"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListFilesInvalidPattern(t *testing.T) {
	root := t.TempDir()
	if _, err := ListFiles(root, Options{Exclude: []string{"[unclosed"}}); err == nil {
		t.Fatal("expected invalid pattern error")
	}
}

func TestListFilesEmptyVolume(t *testing.T) {
	root := filepath.Join(t.TempDir(), "1925")
	if err := os.MkdirAll(filepath.Join(root, "empty-issue"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := ListFiles(root, Options{})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}

func TestTargetName(t *testing.T) {
	flat := ImageFile{Parent: "170621391_1925", Name: "0001.tif"}
	nested := ImageFile{Parent: "Heft 1-2", Name: "0001.tif"}

	if flat.Nested("170621391_1925") {
		t.Fatal("flat file reported as nested")
	}
	if got := flat.TargetName("170621391_1925"); got != "0001.tif" {
		t.Fatalf("flat target = %q", got)
	}
	if !nested.Nested("170621391_1925") {
		t.Fatal("nested file not reported as nested")
	}
	if got := nested.TargetName("170621391_1925"); got != "Heft12_0001.tif" {
		t.Fatalf("nested target = %q", got)
	}
	if a, b := nested.TargetName("170621391_1925"), nested.TargetName("170621391_1925"); a != b {
		t.Fatalf("target name not stable: %q vs %q", a, b)
	}
}

func TestListFilesFollowsSymlinkedVolume(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "scans")
	writeFiles(t, target, "0001.tif", "Supplement/0001.tif")
	link := filepath.Join(base, "170621391_1925")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	files, err := ListFiles(link, Options{})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if got, want := relPaths(t, link, files), []string{"0001.tif", "Supplement/0001.tif"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if files[0].Nested("170621391_1925") || !files[1].Nested("170621391_1925") {
		t.Fatalf("nesting must follow the linked folder name: %+v", files)
	}
}
