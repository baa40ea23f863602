package model

import (
	"sort"
	"time"
)

// RunParameters captures the configuration a run was executed with.
// The narrative report's methodology section restates these values.
type RunParameters struct {
	// Provider is the name of the search provider used ("google", "serper").
	Provider string `json:"provider"`

	// Extractor is the name of the content extractor used ("browser", "static").
	Extractor string `json:"extractor"`

	// MaxResults is the cap on search results requested from the provider.
	MaxResults int `json:"max_results"`

	// Delay is the fixed pause between consecutive extractions.
	Delay time.Duration `json:"delay"`

	// MaxContentLength is the safety bound applied to stored page text.
	MaxContentLength int `json:"max_content_length"`
}

// DomainStats aggregates successful extractions sharing one domain.
// Recomputed in full on every run; never persisted.
type DomainStats struct {
	// Count is the number of successful extractions for the domain.
	Count int `json:"count"`

	// TotalLength is the sum of ContentLength over those extractions.
	TotalLength int `json:"total_length"`

	// PageTitles lists the page titles in rank order.
	PageTitles []string `json:"page_titles"`
}

// RunStats holds the summary statistics derived from a run's records.
type RunStats struct {
	// TotalResults is the number of search results (== number of records).
	TotalResults int `json:"total_results"`

	// SuccessCount is the number of successful extractions.
	SuccessCount int `json:"success_count"`

	// FailureCount is the number of failed extractions.
	FailureCount int `json:"failure_count"`

	// TotalContentLength is the sum of ContentLength over successes.
	TotalContentLength int `json:"total_content_length"`

	// AvgContentLength is TotalContentLength divided by SuccessCount,
	// or 0 when there are no successes.
	AvgContentLength float64 `json:"avg_content_length"`

	// Domains maps each domain to its aggregated statistics.
	// Only successful extractions are counted.
	Domains map[string]*DomainStats `json:"domains"`
}

// RunReport is the full in-memory outcome of one pipeline run: the query,
// all search results and extraction records, and the derived statistics.
// It is built up by the pipeline steps and consumed by the report writers.
type RunReport struct {
	// Query is the free-text search query the run was started with.
	Query string `json:"query"`

	// Params records the configuration the run was executed with.
	Params RunParameters `json:"params"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the pipeline completed (set by ComputeStats).
	FinishedAt time.Time `json:"finished_at"`

	// SearchResults holds the provider's results in rank order.
	SearchResults []SearchResult `json:"search_results"`

	// Records holds one extraction record per search result,
	// order-aligned with SearchResults.
	Records []*ExtractionRecord `json:"records"`

	// NoResults is true when the search returned nothing and the run
	// halted before extraction.
	NoResults bool `json:"no_results"`

	// Stats holds the derived summary statistics.
	Stats RunStats `json:"stats"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// ErrorMessage records a fatal pipeline error, if any.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRunReport creates an empty report for the given query.
func NewRunReport(query string, params RunParameters) *RunReport {
	return &RunReport{
		Query:     query,
		Params:    params,
		StartedAt: time.Now(),
	}
}

// Successful returns the records with extracted content, in rank order.
func (r *RunReport) Successful() []*ExtractionRecord {
	out := make([]*ExtractionRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Succeeded() {
			out = append(out, rec)
		}
	}
	return out
}

// Failed returns the records whose extraction failed, in rank order.
func (r *RunReport) Failed() []*ExtractionRecord {
	out := make([]*ExtractionRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if !rec.Succeeded() {
			out = append(out, rec)
		}
	}
	return out
}

// TopSuccessful returns up to n successful records in rank order.
func (r *RunReport) TopSuccessful(n int) []*ExtractionRecord {
	succ := r.Successful()
	if n < len(succ) {
		succ = succ[:n]
	}
	return succ
}

// SortedDomains returns the domain names in r.Stats.Domains sorted by
// descending page count, ties broken alphabetically. Map iteration order
// is random, so report output goes through this for determinism.
func (r *RunReport) SortedDomains() []string {
	names := make([]string, 0, len(r.Stats.Domains))
	for name := range r.Stats.Domains {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := r.Stats.Domains[names[i]], r.Stats.Domains[names[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return names[i] < names[j]
	})
	return names
}

// ComputeStats derives the summary statistics from the current records
// and stamps FinishedAt. It recomputes everything from scratch, so it is
// safe to call more than once.
//
// The average is explicitly guarded against division by zero: a run with
// no successful extractions reports an average of 0.
func (r *RunReport) ComputeStats() {
	stats := RunStats{
		TotalResults: len(r.Records),
		Domains:      make(map[string]*DomainStats),
	}

	for _, rec := range r.Records {
		if !rec.Succeeded() {
			stats.FailureCount++
			continue
		}
		stats.SuccessCount++
		stats.TotalContentLength += rec.ContentLength

		domain := rec.Domain
		if domain == "" {
			domain = DomainOf(rec.URL)
		}
		ds, ok := stats.Domains[domain]
		if !ok {
			ds = &DomainStats{}
			stats.Domains[domain] = ds
		}
		ds.Count++
		ds.TotalLength += rec.ContentLength
		title := rec.Title
		if title == "" {
			title = "Untitled"
		}
		ds.PageTitles = append(ds.PageTitles, title)
	}

	if stats.SuccessCount > 0 {
		stats.AvgContentLength = float64(stats.TotalContentLength) / float64(stats.SuccessCount)
	}

	r.Stats = stats
	r.FinishedAt = time.Now()
}
