package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/serpdigest/serpdigest/internal/model"
)

// Provider abstracts a search engine that returns ranked results for a
// query. Implementations may scrape a results page or call a hosted
// API. The returned slice is ordered by engine relevance and capped at
// the provider's configured maximum.
//
// An empty slice with a nil error means the engine returned nothing for
// the query; callers must treat it as "no results", not as a failure.
type Provider interface {
	// Search runs the query and returns ranked results.
	Search(ctx context.Context, query string) ([]model.SearchResult, error)

	// Name returns the provider's name for logging and report metadata.
	Name() string
}

// selfReferential reports whether a result URL points back into the
// search engine itself: internal /search paths, google.com hosts, and
// scheme-less fragments the result DOM sometimes contains. These are
// navigation chrome, not results, and must be filtered out.
func selfReferential(rawURL string) bool {
	if rawURL == "" || strings.HasPrefix(rawURL, "/search") || strings.HasPrefix(rawURL, "#") {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	if u.Host == "" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	return host == "google.com" || strings.HasSuffix(host, ".google.com")
}
