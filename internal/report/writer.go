package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/serpdigest/serpdigest/internal/model"
)

// PreviewLength is the number of runes of content shown in table rows
// and in the narrative's detailed-analysis excerpts.
const PreviewLength = 500

// Writer defines the interface for report output.
// Implementations write run results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for producing the table and the narrative in one call.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Preview returns the first PreviewLength runes of s, with "..."
// appended when the text was cut. Rune counting keeps multi-byte text
// intact at the boundary.
func Preview(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewLength {
		return s
	}
	return string(runes[:PreviewLength]) + "..."
}

// statusText derives the human-facing status from the record itself:
// a record with content reads "Success", anything else "Failed". The
// derivation is from content presence, not the stored status value, so
// an inconsistent record can never present an empty row as successful.
func statusText(rec *model.ExtractionRecord) string {
	if rec.Succeeded() && rec.Content != "" {
		return "Success"
	}
	return "Failed"
}

// orNA substitutes "N/A" for empty field values in table rows.
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// tableColumns is the fixed column order of the spreadsheet-style
// outputs. CSV and XLSX share it so the two formats are interchangeable.
func tableColumns() []string {
	return []string{
		"Search Rank",
		"Domain",
		"URL",
		"Search Title",
		"Page Title",
		"Meta Description",
		"Content Length",
		"Content Preview",
		"Status",
		"Error",
		"Extracted At",
	}
}

// recordRow renders one extraction record as a table row in the
// tableColumns order. Failure rows keep their search metadata (rank,
// domain, search title). Cells with no value carry the "N/A"
// placeholder: the content preview on failure rows, the error on
// success rows.
func recordRow(rec *model.ExtractionRecord) []string {
	return []string{
		strconv.Itoa(rec.SearchRank),
		orNA(rec.Domain),
		rec.URL,
		orNA(rec.SearchTitle),
		orNA(rec.Title),
		orNA(rec.MetaDescription),
		strconv.Itoa(rec.ContentLength),
		orNA(Preview(rec.Content)),
		statusText(rec),
		orNA(rec.Error),
		rec.ExtractedAt.Format(time.RFC3339),
	}
}

// TimestampedFilename builds an output filename carrying the run's
// start time, e.g. "search_results_20260825_153004.xlsx". One run's
// table and narrative share the same stamp.
func TimestampedFilename(prefix string, startedAt time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, startedAt.Format("20060102_150405"), ext)
}
