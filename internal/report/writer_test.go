package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/serpdigest/serpdigest/internal/model"
)

// sampleReport builds a finished report with a mix of successful and
// failed records across two domains.
func sampleReport() *model.RunReport {
	report := model.NewRunReport("go concurrency patterns", model.RunParameters{
		Provider:         "google",
		Extractor:        "browser",
		MaxResults:       20,
		Delay:            2 * time.Second,
		MaxContentLength: 100_000,
	})

	results := []model.SearchResult{
		{URL: "https://go.dev/blog/pipelines", Title: "Go Concurrency Patterns: Pipelines", Domain: "go.dev"},
		{URL: "https://go.dev/blog/context", Title: "Go Concurrency Patterns: Context", Domain: "go.dev"},
		{URL: "https://blog.example.com/goroutines", Title: "Understanding Goroutines", Domain: "blog.example.com"},
		{URL: "https://broken.example.org/post", Title: "Unreachable Post", Domain: "broken.example.org"},
	}
	report.SearchResults = results

	now := time.Now()
	records := []*model.ExtractionRecord{
		{
			URL: results[0].URL, Title: "Pipelines", MetaDescription: "Pipelines in Go",
			Content: strings.Repeat("pipeline ", 80), ContentLength: 720,
			ExtractedAt: now, Status: model.StatusSuccess,
		},
		{
			URL: results[1].URL, Title: "Context",
			Content: "context content", ContentLength: 15,
			ExtractedAt: now, Status: model.StatusSuccess,
		},
		{
			URL: results[2].URL, Title: "Goroutines",
			Content: "goroutine content", ContentLength: 17,
			ExtractedAt: now, Status: model.StatusSuccess,
		},
	}
	failed := model.NewFailedRecord(results[3].URL, "connection refused")
	records = append(records, failed)

	for i, rec := range records {
		rec.Annotate(results[i], i+1)
	}
	report.Records = records
	report.ComputeStats()
	return report
}

func TestPreview(t *testing.T) {
	t.Parallel()

	t.Run("short content untouched", func(t *testing.T) {
		t.Parallel()
		if got := Preview("short"); got != "short" {
			t.Errorf("Preview = %q", got)
		}
	})

	t.Run("long content cut with ellipsis", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("x", PreviewLength+100)
		got := Preview(long)
		if !strings.HasSuffix(got, "...") {
			t.Errorf("missing ellipsis: %q", got[len(got)-10:])
		}
		if n := utf8.RuneCountInString(got); n != PreviewLength+3 {
			t.Errorf("preview is %d runes, want %d", n, PreviewLength+3)
		}
	})

	t.Run("exact length untouched", func(t *testing.T) {
		t.Parallel()
		exact := strings.Repeat("y", PreviewLength)
		if got := Preview(exact); got != exact {
			t.Error("content at bound should not be cut")
		}
	})

	t.Run("multibyte cut on rune boundary", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("あ", PreviewLength+10)
		got := Preview(long)
		if !utf8.ValidString(got) {
			t.Error("preview produced invalid UTF-8")
		}
	})
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	success := &model.ExtractionRecord{Status: model.StatusSuccess, Content: "text"}
	if got := statusText(success); got != "Success" {
		t.Errorf("statusText = %q, want Success", got)
	}

	failed := model.NewFailedRecord("https://example.com", "boom")
	if got := statusText(failed); got != "Failed" {
		t.Errorf("statusText = %q, want Failed", got)
	}

	// Status says success but content is empty: derived text must not
	// present the row as successful.
	inconsistent := &model.ExtractionRecord{Status: model.StatusSuccess}
	if got := statusText(inconsistent); got != "Failed" {
		t.Errorf("statusText = %q, want Failed for empty content", got)
	}
}

func TestTimestampedFilename(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 25, 15, 30, 4, 0, time.UTC)
	got := TimestampedFilename("search_results", at, "xlsx")
	if got != "search_results_20260825_153004.xlsx" {
		t.Errorf("filename = %q", got)
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	var buf bytes.Buffer
	n, err := NewCSVWriter(&buf).Write(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}

	if len(rows) != len(report.Records)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(report.Records)+1)
	}
	if rows[0][0] != "Search Rank" || rows[0][len(rows[0])-1] != "Extracted At" {
		t.Errorf("header = %v", rows[0])
	}

	// Recount statuses from the table; they must match the stats the
	// report was written with.
	var successes, failures int
	for _, row := range rows[1:] {
		switch row[8] {
		case "Success":
			successes++
		case "Failed":
			failures++
		default:
			t.Errorf("unexpected status %q", row[8])
		}
	}
	if successes != report.Stats.SuccessCount {
		t.Errorf("successes in table = %d, stats say %d", successes, report.Stats.SuccessCount)
	}
	if failures != report.Stats.FailureCount {
		t.Errorf("failures in table = %d, stats say %d", failures, report.Stats.FailureCount)
	}

	// Failure rows keep their search metadata and mark the missing
	// content with the placeholder.
	last := rows[len(rows)-1]
	if last[0] != "4" {
		t.Errorf("failure row rank = %q, want 4", last[0])
	}
	if last[1] != "broken.example.org" {
		t.Errorf("failure row domain = %q", last[1])
	}
	if last[3] != "Unreachable Post" {
		t.Errorf("failure row search title = %q", last[3])
	}
	if last[7] != "N/A" {
		t.Errorf("failure row content preview = %q, want N/A", last[7])
	}
	if last[9] != "connection refused" {
		t.Errorf("failure row error = %q", last[9])
	}

	// Success rows carry their preview and mark the absent error.
	first := rows[1]
	if !strings.HasPrefix(first[7], "pipeline ") {
		t.Errorf("success row content preview = %q", first[7])
	}
	if first[9] != "N/A" {
		t.Errorf("success row error = %q, want N/A", first[9])
	}
}

func TestRecordRowPlaceholders(t *testing.T) {
	t.Parallel()

	success := &model.ExtractionRecord{
		URL: "https://example.com/ok", Title: "OK", Content: "hello world",
		ContentLength: 11, ExtractedAt: time.Now(), Status: model.StatusSuccess,
	}
	success.Annotate(model.SearchResult{Title: "OK", Domain: "example.com"}, 1)
	row := recordRow(success)
	if row[9] != "N/A" {
		t.Errorf("success error cell = %q, want N/A", row[9])
	}
	if row[7] != "hello world" {
		t.Errorf("success preview cell = %q", row[7])
	}

	failed := model.NewFailedRecord("https://example.com/bad", "timeout")
	failed.Annotate(model.SearchResult{Title: "Bad", Domain: "example.com"}, 2)
	row = recordRow(failed)
	if row[7] != "N/A" {
		t.Errorf("failed preview cell = %q, want N/A", row[7])
	}
	if row[9] != "timeout" {
		t.Errorf("failed error cell = %q", row[9])
	}
}

func TestXLSXWriter(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	var buf bytes.Buffer
	n, err := NewXLSXWriter(&buf).Write(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 {
		t.Error("no bytes written")
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != len(report.Records)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(report.Records)+1)
	}
	if rows[0][0] != "Search Rank" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "https://go.dev/blog/pipelines" {
		t.Errorf("first data row URL = %q", rows[1][2])
	}
}

func TestXLSXWriterColumnWidthCountsRunes(t *testing.T) {
	t.Parallel()

	// 10 runes of Japanese text occupy 30 bytes; the column must be
	// sized to the rune count.
	title := strings.Repeat("あ", 10)
	report := model.NewRunReport("q", model.RunParameters{})
	rec := &model.ExtractionRecord{
		URL: "https://example.jp/a", Title: title, Content: "c",
		ContentLength: 1, ExtractedAt: time.Now(), Status: model.StatusSuccess,
	}
	rec.Annotate(model.SearchResult{Title: "t", Domain: "example.jp"}, 1)
	report.Records = []*model.ExtractionRecord{rec}
	report.ComputeStats()

	var buf bytes.Buffer
	if _, err := NewXLSXWriter(&buf).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	// Page Title is column E: header 10 chars, value 10 runes, so the
	// width is 12. Byte counting would have produced 32.
	width, err := f.GetColWidth(sheetName, "E")
	if err != nil {
		t.Fatalf("read column width: %v", err)
	}
	if width > 20 {
		t.Errorf("column width = %.0f, multi-byte text inflated it", width)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf, WithTopRecords(2)).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, section := range []string{
		"# Search Research Report: go concurrency patterns",
		"## Table of Contents",
		"## Introduction",
		"## Methodology",
		"## Key Findings",
		"## Detailed Analysis",
		"## Conclusion",
		"## References",
	} {
		if !strings.Contains(out, section) {
			t.Errorf("output missing section %q", section)
		}
	}

	// go.dev has two pages and must top the domain table.
	if !strings.Contains(out, "go.dev") {
		t.Error("domain table missing go.dev")
	}
	if !strings.Contains(out, "most represented domain is **go.dev**") {
		t.Error("missing top-domain callout")
	}

	// Detailed analysis is capped at two records.
	if !strings.Contains(out, "### 1. Pipelines") || !strings.Contains(out, "### 2. Context") {
		t.Error("missing detailed-analysis sections for top records")
	}
	if strings.Contains(out, "### 3. Goroutines") {
		t.Error("detailed analysis exceeded top-records cap")
	}

	// Failed reference is still listed.
	if !strings.Contains(out, "https://broken.example.org/post (Failed)") {
		t.Error("references missing failed URL")
	}
}

func TestMarkdownWriterEmptyRun(t *testing.T) {
	t.Parallel()

	report := model.NewRunReport("obscure query", model.RunParameters{Provider: "serper", Extractor: "static"})
	report.ComputeStats()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No pages were extracted successfully") {
		t.Error("missing empty-findings note")
	}
	if !strings.Contains(out, "No successfully extracted pages to analyze.") {
		t.Error("missing empty-analysis note")
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded model.RunReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if decoded.Query != report.Query {
		t.Errorf("query = %q", decoded.Query)
	}
	if len(decoded.Records) != len(report.Records) {
		t.Errorf("records = %d, want %d", len(decoded.Records), len(report.Records))
	}
	if decoded.Stats.SuccessCount != report.Stats.SuccessCount {
		t.Errorf("successes = %d", decoded.Stats.SuccessCount)
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	var a, b bytes.Buffer
	mw := NewMultiWriter(NewCSVWriter(&a), NewJSONWriter(&b))
	n, err := mw.Write(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("a destination received no output")
	}
	if n != a.Len()+b.Len() {
		t.Errorf("total = %d, want %d", n, a.Len()+b.Len())
	}
}
