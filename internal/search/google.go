package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/serpdigest/serpdigest/internal/browser"
	"github.com/serpdigest/serpdigest/internal/model"
)

// resultBlocksJS collects candidate result links from the Google results
// DOM. div.MjjYud is the organic result container; each holds one link
// and usually an h3 title. Filtering of self-referential links happens
// on the Go side where it is testable.
const resultBlocksJS = `(() => {
	const out = [];
	for (const block of document.querySelectorAll('div.MjjYud')) {
		const a = block.querySelector('a[href]');
		if (!a) continue;
		const h3 = block.querySelector('h3');
		out.push({url: a.href, title: h3 ? h3.innerText : ''});
	}
	return out;
})()`

// rawHit is the JSON shape produced by resultBlocksJS.
type rawHit struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// GoogleProvider scrapes the Google results page with the browser
// capability. No API key required, but the result DOM is unstable;
// prefer SerperProvider when an API key is available.
type GoogleProvider struct {
	// session is the shared browser session.
	session *browser.Session

	// maxResults caps the number of returned results.
	maxResults int

	// logger for structured logging.
	logger *slog.Logger
}

// GoogleOption configures a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithGoogleMaxResults caps the number of returned results.
func WithGoogleMaxResults(n int) GoogleOption {
	return func(p *GoogleProvider) {
		if n > 0 {
			p.maxResults = n
		}
	}
}

// WithGoogleLogger sets a custom logger for the provider.
func WithGoogleLogger(logger *slog.Logger) GoogleOption {
	return func(p *GoogleProvider) {
		p.logger = logger
	}
}

// NewGoogleProvider creates a Google scraping provider on top of the
// given browser session.
func NewGoogleProvider(session *browser.Session, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		session:    session,
		maxResults: 20,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Search navigates to the Google results page for the query, scrapes
// the organic result blocks, filters out self-referential links, and
// returns at most maxResults entries in page order (= relevance rank).
func (p *GoogleProvider) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query)

	var hits []rawHit
	if err := p.session.Evaluate(ctx, searchURL, resultBlocksJS, &hits); err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	results := filterHits(hits, p.maxResults)
	p.logger.Info("google search complete",
		"query", query,
		"raw_hits", len(hits),
		"results", len(results),
	)
	return results, nil
}

// filterHits drops self-referential and duplicate links, derives the
// domain for each survivor, and caps the list at maxResults. Order is
// preserved: position in the result slice is the relevance rank.
func filterHits(hits []rawHit, maxResults int) []model.SearchResult {
	results := make([]model.SearchResult, 0, maxResults)
	seen := make(map[string]bool, len(hits))

	for _, h := range hits {
		if len(results) >= maxResults {
			break
		}
		if selfReferential(h.URL) || seen[h.URL] {
			continue
		}
		seen[h.URL] = true
		results = append(results, model.SearchResult{
			URL:    h.URL,
			Title:  h.Title,
			Domain: model.DomainOf(h.URL),
		})
	}
	return results
}
