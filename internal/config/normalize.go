package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalogue()
	if err := c.normalizeCatalogues(); err != nil {
		return err
	}
	c.normalizeImport()
	c.normalizeMetadata()
	if err := c.normalizeRulesetAndLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.BaseDir, err = expandPath(strings.TrimSpace(c.Paths.BaseDir)); err != nil {
		return fmt.Errorf("paths.base_dir: %w", err)
	}
	if c.Paths.ImportDir, err = expandPath(strings.TrimSpace(c.Paths.ImportDir)); err != nil {
		return fmt.Errorf("paths.import_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalogue() {
	c.Catalogue.Name = strings.TrimSpace(c.Catalogue.Name)
	c.Catalogue.SearchField = strings.TrimSpace(c.Catalogue.SearchField)
	if c.Catalogue.SearchField == "" {
		c.Catalogue.SearchField = defaultSearchField
	}
	if c.Catalogue.TimeoutSeconds <= 0 {
		c.Catalogue.TimeoutSeconds = defaultCatalogueTimeout
	}
}

func (c *Config) normalizeCatalogues() error {
	envKey, hasEnvKey := os.LookupEnv("JOURNALIMPORT_CATALOGUE_API_KEY")
	for i := range c.Catalogues {
		src := &c.Catalogues[i]
		src.Name = strings.TrimSpace(src.Name)
		src.Type = strings.ToLower(strings.TrimSpace(src.Type))
		if src.Type == "" {
			src.Type = SourceHTTP
		}
		src.BaseURL = strings.TrimSpace(src.BaseURL)
		src.APIKey = strings.TrimSpace(src.APIKey)
		if src.APIKey == "" && hasEnvKey && src.Type == SourceHTTP {
			src.APIKey = strings.TrimSpace(envKey)
		}
		src.APIKeyHeader = strings.TrimSpace(src.APIKeyHeader)
		if src.APIKeyHeader == "" {
			src.APIKeyHeader = defaultAPIKeyHeader
		}
		if strings.TrimSpace(src.Dir) != "" {
			dir, err := expandPath(strings.TrimSpace(src.Dir))
			if err != nil {
				return fmt.Errorf("catalogues[%d].dir: %w", i, err)
			}
			src.Dir = dir
		}
	}
	return nil
}

func (c *Config) normalizeImport() {
	c.Import.Collection = strings.TrimSpace(c.Import.Collection)
	c.Import.ImageStrategy = strings.ToLower(strings.TrimSpace(c.Import.ImageStrategy))
	if c.Import.ImageStrategy == "" {
		c.Import.ImageStrategy = defaultImageStrategy
	}
	c.Import.ImagesFolderTemplate = strings.TrimSpace(c.Import.ImagesFolderTemplate)
	if c.Import.ImagesFolderTemplate == "" {
		c.Import.ImagesFolderTemplate = defaultImagesFolderTemplate
	}
	if c.Import.Workers <= 0 {
		c.Import.Workers = defaultWorkers
	}
	excludes := make([]string, 0, len(c.Import.Exclude))
	for _, pattern := range c.Import.Exclude {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			excludes = append(excludes, pattern)
		}
	}
	c.Import.Exclude = excludes
}

func (c *Config) normalizeMetadata() {
	defaults := DefaultMetadata()
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	fill(&c.Metadata.Identifier, defaults.Identifier)
	fill(&c.Metadata.Title, defaults.Title)
	fill(&c.Metadata.PublicationYear, defaults.PublicationYear)
	fill(&c.Metadata.CurrentNo, defaults.CurrentNo)
	fill(&c.Metadata.CurrentNoSorting, defaults.CurrentNoSorting)
	fill(&c.Metadata.Collection, defaults.Collection)
	fill(&c.Metadata.PhysPageNumber, defaults.PhysPageNumber)
	fill(&c.Metadata.LogicalPageNumber, defaults.LogicalPageNumber)
	fill(&c.Metadata.IssueType, defaults.IssueType)
	fill(&c.Metadata.PageType, defaults.PageType)
}

func (c *Config) normalizeRulesetAndLedger() error {
	var err error
	if strings.TrimSpace(c.Ruleset.Path) != "" {
		if c.Ruleset.Path, err = expandPath(strings.TrimSpace(c.Ruleset.Path)); err != nil {
			return fmt.Errorf("ruleset.path: %w", err)
		}
	}
	if strings.TrimSpace(c.Ledger.Path) != "" {
		if c.Ledger.Path, err = expandPath(strings.TrimSpace(c.Ledger.Path)); err != nil {
			return fmt.Errorf("ledger.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
