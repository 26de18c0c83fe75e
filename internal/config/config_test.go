package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"journalimport/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, "journals", "incoming"); cfg.Paths.BaseDir != want {
		t.Fatalf("unexpected base dir: got %q want %q", cfg.Paths.BaseDir, want)
	}
	if want := filepath.Join(tempHome, "journals", "import"); cfg.Paths.ImportDir != want {
		t.Fatalf("unexpected import dir: got %q want %q", cfg.Paths.ImportDir, want)
	}
	if cfg.Import.ImageStrategy != config.StrategyCopy {
		t.Fatalf("expected copy strategy by default, got %q", cfg.Import.ImageStrategy)
	}
	if cfg.Import.Workers != 1 {
		t.Fatalf("expected single worker by default, got %d", cfg.Import.Workers)
	}
	if cfg.Catalogue.SearchField != "12" {
		t.Fatalf("unexpected search field %q", cfg.Catalogue.SearchField)
	}
	if cfg.Metadata != config.DefaultMetadata() {
		t.Fatalf("unexpected metadata names: %+v", cfg.Metadata)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ImportDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.Paths.BaseDir); !os.IsNotExist(err) {
		t.Fatalf("expected base dir to be left alone, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "journalimport.toml")

	type source struct {
		Name    string `toml:"name"`
		Type    string `toml:"type"`
		BaseURL string `toml:"base_url"`
	}
	type payload struct {
		Paths struct {
			BaseDir   string `toml:"base_dir"`
			ImportDir string `toml:"import_dir"`
		} `toml:"paths"`
		Catalogue struct {
			Name string `toml:"name"`
		} `toml:"catalogue"`
		Catalogues []source `toml:"catalogues"`
		Import     struct {
			ImageStrategy string `toml:"image_strategy"`
			Workers       int    `toml:"workers"`
		} `toml:"import"`
	}
	custom := payload{}
	custom.Paths.BaseDir = filepath.Join(tempDir, "in")
	custom.Paths.ImportDir = filepath.Join(tempDir, "out")
	custom.Catalogue.Name = "zdb"
	custom.Catalogues = []source{{Name: "zdb", BaseURL: " https://zdb.example.org/api "}}
	custom.Import.ImageStrategy = "MOVE"
	custom.Import.Workers = 4

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Import.ImageStrategy != config.StrategyMove {
		t.Fatalf("expected strategy to be lowercased, got %q", cfg.Import.ImageStrategy)
	}
	if cfg.Import.Workers != 4 {
		t.Fatalf("unexpected workers %d", cfg.Import.Workers)
	}
	src, ok := cfg.CatalogueSource("zdb")
	if !ok {
		t.Fatal("expected zdb catalogue to be configured")
	}
	if src.Type != config.SourceHTTP || src.BaseURL != "https://zdb.example.org/api" {
		t.Fatalf("unexpected source %+v", src)
	}
	if src.APIKeyHeader == "" {
		t.Fatal("expected default api key header")
	}
}

func TestCatalogueAPIKeyFromEnv(t *testing.T) {
	t.Setenv("JOURNALIMPORT_CATALOGUE_API_KEY", "secret")
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[catalogues]]
name = "K10plus"
base_url = "https://k10plus.example.org"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	src, _ := cfg.CatalogueSource("K10plus")
	if src.APIKey != "secret" {
		t.Fatalf("expected api key from env, got %q", src.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"images_folder_template": func(c *config.Config) {
			c.Import.ImagesFolderTemplate = "master"
		},
		"base_url": func(c *config.Config) {
			c.Catalogues = []config.CatalogueSource{{Name: "x", Type: config.SourceHTTP}}
		},
		"dir": func(c *config.Config) {
			c.Catalogues = []config.CatalogueSource{{Name: "x", Type: config.SourceDirectory}}
		},
		"type": func(c *config.Config) {
			c.Catalogues = []config.CatalogueSource{{Name: "x", Type: "sru"}}
		},
		"duplicate": func(c *config.Config) {
			c.Catalogues = []config.CatalogueSource{
				{Name: "x", Type: config.SourceDirectory, Dir: "/a"},
				{Name: "x", Type: config.SourceDirectory, Dir: "/b"},
			}
		},
		"base_dir":       func(c *config.Config) { c.Paths.BaseDir = "" },
		"import_dir":     func(c *config.Config) { c.Paths.ImportDir = "" },
		"image_strategy": func(c *config.Config) { c.Import.ImageStrategy = "link" },
		"import.exclude": func(c *config.Config) { c.Import.Exclude = []string{"[abc"} },
	}
	for fragment, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("expected validation error for %s", fragment)
		}
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in error %q", fragment, err.Error())
		}
	}
}

func TestCreateSampleLoads(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if _, ok := cfg.CatalogueSource(cfg.Catalogue.Name); !ok {
		t.Fatalf("sample catalogue %q should be configured", cfg.Catalogue.Name)
	}
}

func TestLedgerPathDefaultsToLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = "/var/log/journalimport"
	if got := cfg.LedgerPath(); got != filepath.Join("/var/log/journalimport", "ledger.db") {
		t.Fatalf("unexpected ledger path %q", got)
	}
}
