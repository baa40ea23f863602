// Package model defines the data structures shared across the pipeline:
// search results, extraction records, and the aggregated run report with
// its derived statistics.
package model
