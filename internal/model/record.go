package model

import "time"

// ExtractionStatus indicates whether a page extraction succeeded.
type ExtractionStatus string

// Extraction statuses.
const (
	// StatusSuccess means the page was fetched and its content extracted.
	StatusSuccess ExtractionStatus = "success"

	// StatusFailed means the extraction failed; the record carries an
	// error message and no content.
	StatusFailed ExtractionStatus = "failed"
)

// ExtractionRecord holds everything extracted from a single page, plus
// the search metadata merged in by the aggregation step.
//
// Exactly one record exists per SearchResult: failed extractions produce
// a failure-shaped record rather than being dropped, so the record slice
// is always the same length as the search result slice and order-aligned
// by rank. Records are never mutated after annotation.
type ExtractionRecord struct {
	// URL is the page URL the extraction was attempted on.
	URL string `json:"url"`

	// Title is the page title (from the <title> element).
	Title string `json:"title,omitempty"`

	// MetaDescription is the content of the page's
	// <meta name="description"> tag, if present.
	MetaDescription string `json:"meta_description,omitempty"`

	// Content is the normalized page text, truncated to the configured
	// safety bound. Empty for failed extractions.
	Content string `json:"content,omitempty"`

	// ContentLength is the length in runes of the normalized text
	// before truncation. It may exceed len(Content).
	ContentLength int `json:"content_length"`

	// ExtractedAt is when the extraction finished (success or failure).
	ExtractedAt time.Time `json:"extracted_at"`

	// Status is StatusSuccess or StatusFailed. Callers must check this
	// before reading Content.
	Status ExtractionStatus `json:"status"`

	// Error is a human-readable description of the failure.
	// Empty for successful extractions.
	Error string `json:"error,omitempty"`

	// SearchTitle is the title from the originating search result.
	// Set by Annotate.
	SearchTitle string `json:"search_title,omitempty"`

	// Domain is the host of the originating search result. Set by Annotate.
	Domain string `json:"domain,omitempty"`

	// SearchRank is the 1-based relevance rank of the originating
	// search result. Set by Annotate.
	SearchRank int `json:"search_rank"`
}

// NewFailedRecord creates a failure-shaped record for a URL whose
// extraction failed. The record carries the error text and no content.
func NewFailedRecord(pageURL, errMsg string) *ExtractionRecord {
	return &ExtractionRecord{
		URL:         pageURL,
		Status:      StatusFailed,
		Error:       errMsg,
		ExtractedAt: time.Now(),
	}
}

// Annotate merges the originating search result's metadata into the
// record. Rank is 1-based. Records must not be modified afterwards.
func (r *ExtractionRecord) Annotate(result SearchResult, rank int) {
	r.SearchTitle = result.Title
	r.Domain = result.Domain
	r.SearchRank = rank
}

// Succeeded reports whether the record holds extracted content.
func (r *ExtractionRecord) Succeeded() bool {
	return r.Status == StatusSuccess && r.Error == ""
}
