package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"journalimport/internal/config"
	"journalimport/internal/docmodel"
	"journalimport/internal/logging"
	"journalimport/internal/services"
)

// Fetcher returns the seed document of a journal from a named catalogue.
type Fetcher interface {
	Fetch(ctx context.Context, catalogueName, identifier string) (*docmodel.Document, error)
}

// Option customises a Registry.
type Option func(*Registry)

// WithHTTPClient sets the client used by http sources.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) {
		r.httpClient = client
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logging.NewComponentLogger(logger, "catalogue")
	}
}

// Registry resolves catalogue names to sources and caches raw records.
type Registry struct {
	searchField string
	httpClient  *http.Client
	logger      *slog.Logger

	mu      sync.Mutex
	sources map[string]Source
	cache   map[string][]byte
	group   singleflight.Group
}

// NewRegistry builds the sources configured in cfg.Catalogues.
func NewRegistry(cfg *config.Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		searchField: config.Default().Catalogue.SearchField,
		logger:      logging.NewComponentLogger(nil, "catalogue"),
		sources:     make(map[string]Source),
		cache:       make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(r)
	}
	if cfg == nil {
		return r, nil
	}
	if cfg.Catalogue.SearchField != "" {
		r.searchField = cfg.Catalogue.SearchField
	}
	for _, src := range cfg.Catalogues {
		source, err := r.buildSource(src)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "catalogue", "build source", src.Name, err)
		}
		r.Register(src.Name, source)
	}
	return r, nil
}

func (r *Registry) buildSource(src config.CatalogueSource) (Source, error) {
	switch src.Type {
	case config.SourceHTTP:
		return NewHTTPSource(HTTPConfig{
			BaseURL:      src.BaseURL,
			APIKey:       src.APIKey,
			APIKeyHeader: src.APIKeyHeader,
			HTTPClient:   r.httpClient,
		})
	case config.SourceDirectory:
		return NewDirectorySource(src.Dir)
	default:
		return nil, fmt.Errorf("unsupported catalogue type %q", src.Type)
	}
}

// Register adds or replaces a named source.
func (r *Registry) Register(name string, source Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[strings.TrimSpace(name)] = source
}

// Names lists the registered catalogue names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the named source.
func (r *Registry) Source(name string) (Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	source, ok := r.sources[strings.TrimSpace(name)]
	return source, ok
}

// Fetch implements Fetcher. Lookup and transport failures carry
// services.ErrCatalogueLookup; malformed records carry services.ErrInvalidSeed.
func (r *Registry) Fetch(ctx context.Context, catalogueName, identifier string) (*docmodel.Document, error) {
	source, ok := r.Source(catalogueName)
	if !ok {
		return nil, services.Wrap(
			services.ErrCatalogueLookup,
			"catalogue",
			"resolve",
			fmt.Sprintf("no catalogue named %q is configured", catalogueName),
			nil,
		)
	}

	data, err := r.record(ctx, catalogueName, identifier, source)
	if err != nil {
		return nil, services.Wrap(
			services.ErrCatalogueLookup,
			"catalogue",
			"fetch",
			fmt.Sprintf("cannot get catalogue data for %s from %s", identifier, catalogueName),
			err,
		)
	}
	doc, err := docmodel.DecodeSeed(data)
	if err != nil {
		return nil, fmt.Errorf("record %s from %s: %w", identifier, catalogueName, err)
	}
	return doc, nil
}

// record returns the cached record or performs a single shared lookup.
// Failures are not cached.
func (r *Registry) record(ctx context.Context, catalogueName, identifier string, source Source) ([]byte, error) {
	key := catalogueName + "\x00" + identifier
	r.mu.Lock()
	if data, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return data, nil
	}
	r.mu.Unlock()

	value, err, _ := r.group.Do(key, func() (any, error) {
		logger := logging.WithContext(ctx, r.logger)
		logger.Debug("catalogue lookup",
			logging.String("catalogue", catalogueName),
			logging.String("identifier", identifier),
			logging.String("search_field", r.searchField),
		)
		data, err := source.Fetch(ctx, r.searchField, identifier)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[key] = data
		r.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

// Checker is implemented by sources that can verify they are reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// Check verifies the named catalogue is registered and, when supported,
// reachable.
func (r *Registry) Check(ctx context.Context, catalogueName string) error {
	source, ok := r.Source(catalogueName)
	if !ok {
		return fmt.Errorf("no catalogue named %q is configured", catalogueName)
	}
	checker, ok := source.(Checker)
	if !ok {
		return nil
	}
	return checker.Check(ctx)
}
