package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/serpdigest/serpdigest/internal/model"
)

// MarkdownWriter outputs the run as a narrative Markdown report:
// summary, methodology, per-domain findings, and excerpts from the
// top-ranked pages.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// topRecords is how many top-ranked successful pages get a
	// detailed-analysis section.
	topRecords int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTopRecords sets how many top-ranked pages the detailed analysis
// covers. Zero disables the per-page sections.
func WithTopRecords(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		if n >= 0 {
			w.topRecords = n
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		topRecords: 5,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full narrative report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeTableOfContents(md)
	w.writeIntroduction(md, report)
	w.writeMethodology(md, report)
	w.writeKeyFindings(md, report)
	w.writeDetailedAnalysis(md, report)
	w.writeConclusion(md, report)
	w.writeReferences(md, report)
	w.writeFooter(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Search Research Report: " + report.Query)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + report.Query + "`"},
			{"Run Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Results Analyzed", strconv.Itoa(report.Stats.TotalResults)},
			{"Successful Extractions", strconv.Itoa(report.Stats.SuccessCount)},
			{"Failed Extractions", strconv.Itoa(report.Stats.FailureCount)},
			{"Unique Domains", strconv.Itoa(len(report.Stats.Domains))},
			{"Avg Content Length", fmt.Sprintf("%.0f chars", report.Stats.AvgContentLength)},
		},
	})
	md.PlainText("")
}

// writeTableOfContents writes the section index.
func (w *MarkdownWriter) writeTableOfContents(md *markdown.Markdown) {
	md.H2("Table of Contents")
	md.PlainText("")
	md.BulletList(
		markdown.Link("Introduction", "#introduction"),
		markdown.Link("Methodology", "#methodology"),
		markdown.Link("Key Findings", "#key-findings"),
		markdown.Link("Detailed Analysis", "#detailed-analysis"),
		markdown.Link("Conclusion", "#conclusion"),
		markdown.Link("References", "#references"),
	)
	md.PlainText("")
}

// writeIntroduction writes a short prose framing of the run.
func (w *MarkdownWriter) writeIntroduction(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Introduction")
	md.PlainText("")
	md.PlainText(fmt.Sprintf(
		"This report summarizes an automated research run for the query %q. "+
			"The top search results were visited in relevance order and the text "+
			"content of each page was extracted and analyzed. Of the %d results "+
			"found, %d pages were extracted successfully across %d unique domains.",
		report.Query,
		report.Stats.TotalResults,
		report.Stats.SuccessCount,
		len(report.Stats.Domains),
	))
	md.PlainText("")
}

// writeMethodology restates the run parameters so the report is
// reproducible without access to the original invocation.
func (w *MarkdownWriter) writeMethodology(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Methodology")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("Search provider: %s", report.Params.Provider),
		fmt.Sprintf("Content extractor: %s", report.Params.Extractor),
		fmt.Sprintf("Result limit: top %d results", report.Params.MaxResults),
		fmt.Sprintf("Pause between page visits: %s", report.Params.Delay),
		fmt.Sprintf("Stored content bound: %d chars per page", report.Params.MaxContentLength),
	)
	md.PlainText("")
	md.PlainText(
		"Pages were visited strictly in search-rank order with a fixed pause " +
			"between requests. Pages that could not be fetched are recorded as " +
			"failures and excluded from the content statistics.",
	)
	md.PlainText("")
}

// writeKeyFindings writes the per-domain aggregation table, ordered by
// page count.
func (w *MarkdownWriter) writeKeyFindings(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Key Findings")
	md.PlainText("")

	domains := report.SortedDomains()
	if len(domains) == 0 {
		md.PlainText("No pages were extracted successfully, so no domain-level findings are available.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(domains))
	for _, name := range domains {
		ds := report.Stats.Domains[name]
		avg := 0
		if ds.Count > 0 {
			avg = ds.TotalLength / ds.Count
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(ds.Count),
			strconv.Itoa(ds.TotalLength),
			strconv.Itoa(avg),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Pages", "Total Content (chars)", "Avg Content (chars)"},
		Rows:   rows,
	})
	md.PlainText("")

	top := report.Stats.Domains[domains[0]]
	md.PlainText(fmt.Sprintf(
		"The most represented domain is **%s** with %d page(s) among the top results.",
		domains[0], top.Count,
	))
	md.PlainText("")
}

// writeDetailedAnalysis writes a per-page section for the top-ranked
// successful extractions, each with a bounded content excerpt.
func (w *MarkdownWriter) writeDetailedAnalysis(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Detailed Analysis")
	md.PlainText("")

	top := report.TopSuccessful(w.topRecords)
	if len(top) == 0 {
		md.PlainText("No successfully extracted pages to analyze.")
		md.PlainText("")
		return
	}

	for _, rec := range top {
		md.H3(fmt.Sprintf("%d. %s", rec.SearchRank, orNA(rec.Title)))
		md.PlainText("")
		md.BulletList(
			fmt.Sprintf("URL: %s", rec.URL),
			fmt.Sprintf("Domain: %s", orNA(rec.Domain)),
			fmt.Sprintf("Content length: %d chars", rec.ContentLength),
		)
		md.PlainText("")
		if rec.MetaDescription != "" {
			md.PlainText("> " + rec.MetaDescription)
			md.PlainText("")
		}
		md.PlainText(Preview(rec.Content))
		md.PlainText("")
	}
}

// writeConclusion writes the closing prose with the headline numbers.
func (w *MarkdownWriter) writeConclusion(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Conclusion")
	md.PlainText("")
	md.PlainText(fmt.Sprintf(
		"The run analyzed %d search results, extracting %d pages successfully "+
			"(%d failed) for a total of %d characters of content. "+
			"The extracted material spans %d unique domains.",
		report.Stats.TotalResults,
		report.Stats.SuccessCount,
		report.Stats.FailureCount,
		report.Stats.TotalContentLength,
		len(report.Stats.Domains),
	))
	md.PlainText("")
}

// writeReferences lists every analyzed URL with its outcome.
func (w *MarkdownWriter) writeReferences(md *markdown.Markdown, report *model.RunReport) {
	md.H2("References")
	md.PlainText("")

	items := make([]string, 0, len(report.Records))
	for _, rec := range report.Records {
		items = append(items, fmt.Sprintf("%s (%s)", rec.URL, statusText(rec)))
	}
	if len(items) == 0 {
		md.PlainText("No references.")
	} else {
		md.BulletList(items...)
	}
	md.PlainText("")
}

// writeFooter writes the generation footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, report *model.RunReport) {
	md.HorizontalRule()
	md.PlainText(fmt.Sprintf(
		"Generated by serpdigest at %s",
		report.FinishedAt.Format("2006-01-02 15:04:05 MST"),
	))
}
