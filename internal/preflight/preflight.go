package preflight

import (
	"context"

	"journalimport/internal/config"
)

// MinFreeBytes is the free space import_dir needs before an import starts.
const MinFreeBytes uint64 = 1 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CatalogueChecker verifies a named catalogue.
type CatalogueChecker interface {
	Check(ctx context.Context, catalogueName string) error
}

// RunAll executes all applicable preflight checks for the given config.
// The catalogue is only checked when catalogues is non-nil.
func RunAll(ctx context.Context, cfg *config.Config, catalogues CatalogueChecker) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// The base dir is only written to when images are moved out of it.
	if cfg.Import.ImageStrategy == config.StrategyMove {
		results = append(results, CheckDirectoryAccess("Base directory", cfg.Paths.BaseDir))
	} else {
		results = append(results, CheckReadableDirectory("Base directory", cfg.Paths.BaseDir))
	}
	results = append(results, CheckDirectoryAccess("Import directory", cfg.Paths.ImportDir))
	if cfg.Import.ImageStrategy != config.StrategyIgnore {
		results = append(results, CheckFreeSpace("Import free space", cfg.Paths.ImportDir, MinFreeBytes))
	}
	results = append(results, CheckRuleset(cfg.Ruleset.Path))

	if catalogues != nil {
		results = append(results, CheckCatalogue(ctx, catalogues, cfg.Catalogue.Name))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
