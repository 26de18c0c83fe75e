package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	BaseDir   string `toml:"base_dir"`
	ImportDir string `toml:"import_dir"`
	LogDir    string `toml:"log_dir"`
}

// Catalogue selects the catalogue source used for seed records.
type Catalogue struct {
	Name           string `toml:"name"`
	SearchField    string `toml:"search_field"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CatalogueSource describes one configured catalogue.
type CatalogueSource struct {
	Name         string `toml:"name"`
	Type         string `toml:"type"`
	BaseURL      string `toml:"base_url"`
	Dir          string `toml:"dir"`
	APIKey       string `toml:"api_key"`
	APIKeyHeader string `toml:"api_key_header"`
}

// Import contains the per-run import behaviour.
type Import struct {
	Collection           string   `toml:"collection"`
	ImageStrategy        string   `toml:"image_strategy"`
	ImagesFolderTemplate string   `toml:"images_folder_template"`
	Workers              int      `toml:"workers"`
	Exclude              []string `toml:"exclude"`
}

// Metadata names the ruleset types the document builder writes.
type Metadata struct {
	Identifier        string `toml:"identifier"`
	Title             string `toml:"title"`
	PublicationYear   string `toml:"publication_year"`
	CurrentNo         string `toml:"current_no"`
	CurrentNoSorting  string `toml:"current_no_sorting"`
	Collection        string `toml:"collection"`
	PhysPageNumber    string `toml:"phys_page_number"`
	LogicalPageNumber string `toml:"logical_page_number"`
	IssueType         string `toml:"issue_type"`
	PageType          string `toml:"page_type"`
}

// Ruleset points at an optional ruleset file overriding the embedded default.
type Ruleset struct {
	Path string `toml:"path"`
}

// Ledger controls the SQLite outcome history.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the importer.
//
// Configuration sections by subsystem:
//   - Paths: source tree, destination import folder, logs
//   - Catalogue: which catalogue to query and how long to wait
//   - Catalogues: the available catalogue sources
//   - Import: collection, image strategy, destination folder template
//   - Metadata: ruleset type names used by the document builder
//   - Ruleset: optional ruleset file
//   - Ledger: outcome history database
//   - Logging: log format and level
type Config struct {
	Paths      Paths             `toml:"paths"`
	Catalogue  Catalogue         `toml:"catalogue"`
	Catalogues []CatalogueSource `toml:"catalogues"`
	Import     Import            `toml:"import"`
	Metadata   Metadata          `toml:"metadata"`
	Ruleset    Ruleset           `toml:"ruleset"`
	Ledger     Ledger            `toml:"ledger"`
	Logging    Logging           `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("journalimport.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the destination and log directories. The source
// tree is never created; a missing base_dir simply yields no journals.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ImportDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogueSource returns the configured source with the given name.
func (c *Config) CatalogueSource(name string) (CatalogueSource, bool) {
	name = strings.TrimSpace(name)
	for _, src := range c.Catalogues {
		if src.Name == name {
			return src, true
		}
	}
	return CatalogueSource{}, false
}

// LedgerPath returns the outcome database location.
func (c *Config) LedgerPath() string {
	if strings.TrimSpace(c.Ledger.Path) != "" {
		return c.Ledger.Path
	}
	return filepath.Join(c.Paths.LogDir, "ledger.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
