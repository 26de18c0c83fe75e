package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalogues(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		return errors.New("paths.base_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ImportDir) == "" {
		return errors.New("paths.import_dir must be set")
	}
	return nil
}

func (c *Config) validateCatalogues() error {
	if c.Catalogue.TimeoutSeconds <= 0 {
		return errors.New("catalogue.timeout_seconds must be positive")
	}
	seen := make(map[string]struct{}, len(c.Catalogues))
	for i, src := range c.Catalogues {
		if src.Name == "" {
			return fmt.Errorf("catalogues[%d].name must be set", i)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("catalogues[%d]: duplicate catalogue name %q", i, src.Name)
		}
		seen[src.Name] = struct{}{}
		switch src.Type {
		case SourceHTTP:
			if src.BaseURL == "" {
				return fmt.Errorf("catalogues[%d].base_url must be set for http catalogue %q", i, src.Name)
			}
		case SourceDirectory:
			if strings.TrimSpace(src.Dir) == "" {
				return fmt.Errorf("catalogues[%d].dir must be set for directory catalogue %q", i, src.Name)
			}
		default:
			return fmt.Errorf("catalogues[%d].type: unsupported value %q (use http or directory)", i, src.Type)
		}
	}
	return nil
}

func (c *Config) validateImport() error {
	switch c.Import.ImageStrategy {
	case StrategyCopy, StrategyMove, StrategyIgnore:
	default:
		return fmt.Errorf("import.image_strategy: unsupported value %q (use copy, move or ignore)", c.Import.ImageStrategy)
	}
	if !strings.Contains(c.Import.ImagesFolderTemplate, ProcessTitlePlaceholder) {
		return fmt.Errorf("import.images_folder_template must contain %s", ProcessTitlePlaceholder)
	}
	if c.Import.Workers <= 0 {
		return errors.New("import.workers must be positive")
	}
	for _, pattern := range c.Import.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("import.exclude: invalid glob %q", pattern)
		}
	}
	return nil
}
