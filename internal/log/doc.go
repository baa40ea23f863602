// Package log provides logging utilities for serpdigest.
// It wraps slog handlers to keep log output readable when attribute
// values carry extracted page content, which can run to tens of
// thousands of characters.
package log
