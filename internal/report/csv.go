package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/serpdigest/serpdigest/internal/model"
)

// CSVWriter outputs the run as a CSV table with one row per extraction
// record, in search-rank order. Columns match the XLSX output exactly,
// so the two formats carry the same data.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as CSV. The csv encoder does not report
// bytes itself, so they are counted on their way to the destination.
func (w *CSVWriter) Write(report *model.RunReport) (int, error) {
	counter := &countingWriter{dst: w.output}
	enc := csv.NewWriter(counter)

	if err := enc.Write(tableColumns()); err != nil {
		return counter.n, fmt.Errorf("csv report: %w", err)
	}
	for _, rec := range report.Records {
		if err := enc.Write(recordRow(rec)); err != nil {
			return counter.n, fmt.Errorf("csv report: %w", err)
		}
	}

	enc.Flush()
	if err := enc.Error(); err != nil {
		return counter.n, fmt.Errorf("csv report: %w", err)
	}
	return counter.n, nil
}

// countingWriter counts bytes on their way to the destination.
type countingWriter struct {
	dst io.Writer
	n   int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.dst.Write(p)
	c.n += n
	return n, err
}
