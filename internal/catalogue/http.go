package catalogue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"journalimport/internal/services"
)

const (
	defaultUserAgent   = "journalimport"
	defaultHTTPTimeout = 30 * time.Second
	maxRecordBytes     = 8 << 20
)

// HTTPConfig describes an http catalogue source.
type HTTPConfig struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	UserAgent    string
	HTTPClient   *http.Client
}

// HTTPSource queries a JSON catalogue endpoint with
// GET {base}?field={searchField}&query={identifier}.
type HTTPSource struct {
	baseURL      *url.URL
	apiKey       string
	apiKeyHeader string
	userAgent    string
	http         *http.Client
}

// NewHTTPSource creates an HTTPSource from the supplied configuration.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("catalogue: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("catalogue: parse base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("catalogue: unsupported url scheme %q", baseURL.Scheme)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPSource{
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: strings.TrimSpace(cfg.APIKeyHeader),
		userAgent:    userAgent,
		http:         client,
	}, nil
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, searchField, identifier string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("catalogue: http source is nil")
	}
	endpoint := *s.baseURL
	params := endpoint.Query()
	params.Set("field", searchField)
	params.Set("query", identifier)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("catalogue: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if s.apiKey != "" && s.apiKeyHeader != "" {
		req.Header.Set(s.apiKeyHeader, s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalogue: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("catalogue: no record for %s: %w", identifier, services.ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalogue: lookup failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordBytes+1))
	if err != nil {
		return nil, fmt.Errorf("catalogue: read response: %w", err)
	}
	if len(data) > maxRecordBytes {
		return nil, fmt.Errorf("catalogue: record for %s exceeds %d bytes", identifier, maxRecordBytes)
	}
	return data, nil
}

// Check issues a HEAD request against the base url. Any response below 500
// counts as reachable.
func (s *HTTPSource) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("catalogue: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalogue: %s unreachable: %w", s.baseURL.Host, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("catalogue: %s returned %s", s.baseURL.Host, resp.Status)
	}
	return nil
}
