package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/serpdigest/serpdigest/internal/extract"
	"github.com/serpdigest/serpdigest/internal/model"
	"github.com/serpdigest/serpdigest/internal/search"
)

// ErrNoResults is returned by the search step when the provider finds
// nothing for the query. Callers should treat it as a clean early exit,
// not a failure: no records exist and no reports should be written.
var ErrNoResults = errors.New("no search results for query")

// SearchStep runs the query against the search provider and stores the
// ranked results in the report.
//
// Design decision: a provider error is downgraded to "no results" here
// rather than aborting the run. Scraping-based providers fail routinely
// (markup drift, interstitials), and the useful signal for the operator
// is the same either way: nothing to extract.
type SearchStep struct {
	// provider produces ranked results for the query.
	provider search.Provider

	// logger for structured logging.
	logger *slog.Logger
}

// SearchStepOption configures a SearchStep.
type SearchStepOption func(*SearchStep)

// WithSearchLogger sets a custom logger for the search step.
func WithSearchLogger(logger *slog.Logger) SearchStepOption {
	return func(s *SearchStep) {
		s.logger = logger
	}
}

// NewSearchStep creates a search step backed by the given provider.
func NewSearchStep(provider search.Provider, opts ...SearchStepOption) *SearchStep {
	s := &SearchStep{
		provider: provider,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Do executes the search step. On an empty result set it marks the
// report and returns ErrNoResults so the pipeline halts before
// extraction.
func (s *SearchStep) Do(ctx context.Context, report *model.RunReport) error {
	results, err := s.provider.Search(ctx, report.Query)
	if err != nil {
		s.logger.Warn("search failed, treating as no results",
			"provider", s.provider.Name(),
			"query", report.Query,
			"error", err,
		)
		results = nil
	}

	report.SearchResults = results
	if len(results) == 0 {
		report.NoResults = true
		return ErrNoResults
	}

	s.logger.Info("search results collected",
		"provider", s.provider.Name(),
		"query", report.Query,
		"count", len(results),
	)
	return nil
}

// ProgressFunc is called before each extraction with the 1-based rank,
// the total count, and the result about to be fetched.
type ProgressFunc func(rank, total int, result model.SearchResult)

// ExtractStep visits each search result in rank order and appends one
// extraction record per result to the report. Failed extractions become
// failure-shaped records rather than aborting the step, so the record
// slice stays order-aligned with the search results.
type ExtractStep struct {
	// extractor fetches and extracts a single page.
	extractor extract.Extractor

	// delay is the fixed pause between consecutive extractions.
	// Skipped after the last page.
	delay time.Duration

	// progress is invoked before each extraction, if set.
	progress ProgressFunc

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractDelay sets the pause between consecutive extractions.
// Zero disables the pause.
func WithExtractDelay(d time.Duration) ExtractStepOption {
	return func(s *ExtractStep) {
		s.delay = d
	}
}

// WithExtractProgress registers a callback invoked before each
// extraction. Used by the CLI to drive its progress display.
func WithExtractProgress(fn ProgressFunc) ExtractStepOption {
	return func(s *ExtractStep) {
		s.progress = fn
	}
}

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates an extraction step backed by the given extractor.
func NewExtractStep(extractor extract.Extractor, opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		extractor: extractor,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extraction step. Pages are visited strictly in rank
// order with a fixed pause between them. Per-page failures produce
// failure records; only context cancellation aborts the loop.
func (s *ExtractStep) Do(ctx context.Context, report *model.RunReport) error {
	total := len(report.SearchResults)

	for i, result := range report.SearchResults {
		if err := ctx.Err(); err != nil {
			return err
		}

		rank := i + 1
		if s.progress != nil {
			s.progress(rank, total, result)
		}

		rec, err := s.extractor.Extract(ctx, result.URL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("extraction failed",
				"rank", rank,
				"url", result.URL,
				"error", err,
			)
			rec = model.NewFailedRecord(result.URL, err.Error())
		}
		rec.Annotate(result, rank)
		report.Records = append(report.Records, rec)

		// Pause between requests, but not after the last one.
		if s.delay > 0 && i < total-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	s.logger.Info("extraction complete",
		"total", total,
		"failed", len(report.Failed()),
	)
	return nil
}

// StatsStep derives the summary statistics from the accumulated records
// and stamps the report's finish time.
type StatsStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// StatsStepOption configures a StatsStep.
type StatsStepOption func(*StatsStep)

// WithStatsLogger sets a custom logger for the stats step.
func WithStatsLogger(logger *slog.Logger) StatsStepOption {
	return func(s *StatsStep) {
		s.logger = logger
	}
}

// NewStatsStep creates a statistics step.
func NewStatsStep(opts ...StatsStepOption) *StatsStep {
	s := &StatsStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *StatsStep) Name() string {
	return "stats"
}

// Do executes the statistics step.
func (s *StatsStep) Do(_ context.Context, report *model.RunReport) error {
	report.ComputeStats()

	s.logger.Info("statistics computed",
		"total", report.Stats.TotalResults,
		"succeeded", report.Stats.SuccessCount,
		"failed", report.Stats.FailureCount,
		"domains", len(report.Stats.Domains),
	)
	return nil
}
