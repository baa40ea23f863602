package report

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/serpdigest/serpdigest/internal/model"
)

// sheetName is the single worksheet the table is written to.
const sheetName = "Search Results"

// maxColumnWidth caps the auto-sized column width so preview columns
// don't produce absurdly wide sheets.
const maxColumnWidth = 50

// XLSXWriter outputs the run as an Excel workbook with one row per
// extraction record, in search-rank order. Columns match the CSV
// output exactly.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as an XLSX workbook.
func (w *XLSXWriter) Write(report *model.RunReport) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, fmt.Errorf("xlsx report: %w", err)
	}

	columns := tableColumns()
	header := make([]any, len(columns))
	widths := make([]int, len(columns))
	for i, col := range columns {
		header[i] = col
		widths[i] = utf8.RuneCountInString(col)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("xlsx report: %w", err)
	}

	for i, rec := range report.Records {
		cells := recordRow(rec)
		row := make([]any, len(cells))
		for j, cell := range cells {
			row[j] = cell
			// Width in runes, not bytes, so multi-byte text does not
			// inflate the column.
			if n := utf8.RuneCountInString(cell); n > widths[j] {
				widths[j] = n
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, fmt.Errorf("xlsx report: %w", err)
		}
		if err := f.SetSheetRow(sheetName, addr, &row); err != nil {
			return 0, fmt.Errorf("xlsx report: %w", err)
		}
	}

	// Size columns to content, bounded so previews stay readable.
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, fmt.Errorf("xlsx report: %w", err)
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(sheetName, col, col, float64(width+2)); err != nil {
			return 0, fmt.Errorf("xlsx report: %w", err)
		}
	}

	n, err := f.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("xlsx report: %w", err)
	}
	return int(n), nil
}
