package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/serpdigest/serpdigest/internal/model"
)

// SerperProvider queries the Serper hosted search API. It needs an API
// key but no browser, which makes it the reliable choice for headless
// environments and CI.
type SerperProvider struct {
	// endpoint is the API URL. Overridable for testing.
	endpoint string

	// apiKey is sent in the X-API-KEY header.
	apiKey string

	// maxResults caps the number of returned results.
	maxResults int

	// client is the HTTP client used for API calls.
	client *http.Client

	// logger for structured logging.
	logger *slog.Logger
}

// SerperOption configures a SerperProvider.
type SerperOption func(*SerperProvider)

// WithSerperEndpoint overrides the API URL. Mainly useful for tests.
func WithSerperEndpoint(endpoint string) SerperOption {
	return func(p *SerperProvider) {
		p.endpoint = endpoint
	}
}

// WithSerperMaxResults caps the number of returned results.
func WithSerperMaxResults(n int) SerperOption {
	return func(p *SerperProvider) {
		if n > 0 {
			p.maxResults = n
		}
	}
}

// WithSerperHTTPClient sets a custom HTTP client.
func WithSerperHTTPClient(client *http.Client) SerperOption {
	return func(p *SerperProvider) {
		p.client = client
	}
}

// WithSerperLogger sets a custom logger for the provider.
func WithSerperLogger(logger *slog.Logger) SerperOption {
	return func(p *SerperProvider) {
		p.logger = logger
	}
}

// NewSerperProvider creates a Serper API provider with the given key.
func NewSerperProvider(apiKey string, opts ...SerperOption) *SerperProvider {
	p := &SerperProvider{
		endpoint:   "https://google.serper.dev/search",
		apiKey:     apiKey,
		maxResults: 20,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *SerperProvider) Name() string {
	return "serper"
}

// serperRequest is the API request body.
type serperRequest struct {
	Query string `json:"q"`
}

// serperResponse is the subset of the API response we consume.
type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

// serperOrganic is a single organic result from the API.
type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search POSTs the query to the API and maps the organic results to
// SearchResults in API order (= relevance rank), capped at maxResults.
func (p *SerperProvider) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	body, err := json.Marshal(serperRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("serper search: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("serper search: %w", err)
	}
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper search: unexpected status %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("serper search: decode response: %w", err)
	}

	results := make([]model.SearchResult, 0, p.maxResults)
	for _, item := range parsed.Organic {
		if len(results) >= p.maxResults {
			break
		}
		if item.Link == "" {
			continue
		}
		results = append(results, model.SearchResult{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
			Domain:  model.DomainOf(item.Link),
		})
	}

	p.logger.Info("serper search complete",
		"query", query,
		"organic", len(parsed.Organic),
		"results", len(results),
	)
	return results, nil
}
