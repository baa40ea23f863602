// Package pipeline orchestrates a run as a sequence of steps sharing
// one report: search, extraction, and statistics. Steps execute in
// order, each reading what earlier steps produced, with cancellation
// checked between steps.
package pipeline
