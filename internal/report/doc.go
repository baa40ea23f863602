// Package report renders a run's outcome in several formats: a
// spreadsheet-style table (XLSX or CSV) with one row per extraction
// record, a Markdown narrative summarizing the run, and JSON for tool
// integration. All writers share one interface so callers can fan a
// report out to several destinations at once.
package report
