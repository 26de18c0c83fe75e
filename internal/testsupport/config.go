package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"journalimport/internal/config"
)

// TestCatalogue is the name of the directory catalogue every test config
// carries.
const TestCatalogue = "test"

// MinimalSeed is a valid catalogue record with one volume.
const MinimalSeed = `{"logical": {"type": "Periodical", "children": [{"type": "PeriodicalVolume"}]}}`

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The configured catalogue reads seeds from <root>/seeds, see WriteSeed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BaseDir = filepath.Join(base, "incoming")
	cfgVal.Paths.ImportDir = filepath.Join(base, "import")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalogue.Name = TestCatalogue
	cfgVal.Catalogue.TimeoutSeconds = 5
	cfgVal.Catalogues = []config.CatalogueSource{{
		Name: TestCatalogue,
		Type: config.SourceDirectory,
		Dir:  filepath.Join(base, "seeds"),
	}}
	cfgVal.Ledger.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Paths.BaseDir, cfgVal.Catalogues[0].Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithStrategy sets the image strategy.
func WithStrategy(strategy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.ImageStrategy = strategy
	}
}

// WithCollection sets the configured default collection.
func WithCollection(collection string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.Collection = collection
	}
}

// WithWorkers sets the number of volumes imported in parallel.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.Workers = n
	}
}

// WithLedger enables the outcome ledger under the log directory.
func WithLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.BaseDir)
}

// WriteSeed stores a catalogue record for journalID in the test catalogue.
func WriteSeed(t testing.TB, cfg *config.Config, journalID, body string) {
	t.Helper()

	src, ok := cfg.CatalogueSource(TestCatalogue)
	if !ok {
		t.Fatalf("config has no %q catalogue", TestCatalogue)
	}
	if body == "" {
		body = MinimalSeed
	}
	path := filepath.Join(src.Dir, journalID+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write seed %s: %v", path, err)
	}
}
