package config

const (
	defaultConfigPath           = "~/.config/journalimport/config.toml"
	defaultBaseDir              = "~/journals/incoming"
	defaultImportDir            = "~/journals/import"
	defaultLogDir               = "~/.local/share/journalimport/logs"
	defaultCatalogueName        = "K10plus"
	defaultSearchField          = "12"
	defaultCatalogueTimeout     = 30
	defaultImageStrategy        = StrategyCopy
	defaultImagesFolderTemplate = "{processtitle}_media"
	defaultWorkers              = 1
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultAPIKeyHeader         = "X-API-Key"

	// ProcessTitlePlaceholder is replaced with the process title in
	// Import.ImagesFolderTemplate.
	ProcessTitlePlaceholder = "{processtitle}"

	StrategyCopy   = "copy"
	StrategyMove   = "move"
	StrategyIgnore = "ignore"

	SourceHTTP      = "http"
	SourceDirectory = "directory"
)

// DefaultExcludes lists the discovery globs skipped unless overridden.
var DefaultExcludes = []string{"**/.*", "**/Thumbs.db"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseDir:   defaultBaseDir,
			ImportDir: defaultImportDir,
			LogDir:    defaultLogDir,
		},
		Catalogue: Catalogue{
			Name:           defaultCatalogueName,
			SearchField:    defaultSearchField,
			TimeoutSeconds: defaultCatalogueTimeout,
		},
		Import: Import{
			ImageStrategy:        defaultImageStrategy,
			ImagesFolderTemplate: defaultImagesFolderTemplate,
			Workers:              defaultWorkers,
			Exclude:              append([]string(nil), DefaultExcludes...),
		},
		Metadata: DefaultMetadata(),
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultMetadata returns the type names of the default periodical ruleset.
func DefaultMetadata() Metadata {
	return Metadata{
		Identifier:        "CatalogIDDigital",
		Title:             "TitleDocMain",
		PublicationYear:   "PublicationYear",
		CurrentNo:         "CurrentNo",
		CurrentNoSorting:  "CurrentNoSorting",
		Collection:        "singleDigCollection",
		PhysPageNumber:    "physPageNumber",
		LogicalPageNumber: "logicalPageNumber",
		IssueType:         "PeriodicalIssue",
		PageType:          "page",
	}
}
