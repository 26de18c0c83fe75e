package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"journalimport/internal/config"
)

type stubChecker struct {
	err   error
	delay time.Duration
}

func (s stubChecker) Check(ctx context.Context, _ string) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if result := CheckReadableDirectory("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckFreeSpace("space", dir, ^uint64(0)); result.Passed {
		t.Fatal("expected failure for impossible threshold")
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckRuleset(t *testing.T) {
	if result := CheckRuleset(""); !result.Passed {
		t.Fatalf("embedded ruleset should load: %s", result.Detail)
	}
	if result := CheckRuleset(filepath.Join(t.TempDir(), "missing.jsonc")); result.Passed {
		t.Fatal("expected failure for missing ruleset")
	}
}

func TestCheckCatalogue(t *testing.T) {
	ctx := context.Background()
	if result := CheckCatalogue(ctx, stubChecker{}, "K10plus"); !result.Passed || result.Name != "Catalogue K10plus" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result := CheckCatalogue(ctx, stubChecker{err: errors.New("connection refused")}, "K10plus"); result.Passed {
		t.Fatal("expected failure")
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	result := CheckCatalogue(timeoutCtx, stubChecker{delay: time.Second}, "K10plus")
	if result.Passed || !strings.Contains(result.Detail, "timed out") {
		t.Fatalf("expected timeout detail, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = filepath.Join(base, "incoming")
	cfg.Paths.ImportDir = filepath.Join(base, "import")
	cfg.Import.ImageStrategy = config.StrategyIgnore
	if err := os.MkdirAll(cfg.Paths.BaseDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), &cfg, stubChecker{})
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Import directory" {
		t.Fatalf("expected only the missing import dir to fail, got %+v", failed)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	if err := os.MkdirAll(cfg.Paths.ImportDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if failed := Failed(RunAll(context.Background(), &cfg, nil)); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
	if RunAll(context.Background(), nil, nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
