package model

import "net/url"

// SearchResult is a single entry returned by a search provider.
// Results are ordered by engine relevance; the position in the slice
// determines the rank (first element = rank 1).
type SearchResult struct {
	// URL is the absolute URL of the result page.
	URL string `json:"url"`

	// Title is the result title as shown on the search results page.
	Title string `json:"title"`

	// Snippet is the short result description, when the provider
	// supplies one (API providers do, DOM scraping usually does not).
	Snippet string `json:"snippet,omitempty"`

	// Domain is the network host portion of URL, used as the grouping
	// key for per-domain statistics.
	Domain string `json:"domain"`
}

// DomainOf returns the host portion of rawURL, or "unknown" if the URL
// cannot be parsed or has no host. Statistics grouping must never fail
// on a malformed URL, so this function does not return an error.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
