package config

import "errors"

// Configuration validation errors.
// Package-level sentinel errors let callers use errors.Is() for
// programmatic handling while still carrying human-readable messages.
var (
	// ErrUnknownProvider is returned for a Provider value that is
	// neither "google" nor "serper".
	ErrUnknownProvider = errors.New("unknown search provider: must be \"google\" or \"serper\"")

	// ErrMissingAPIKey is returned when the Serper provider is selected
	// without an API key (flag, config file, or SERPER_API_KEY).
	ErrMissingAPIKey = errors.New("serper provider requires an API key: set --serper-key or SERPER_API_KEY")

	// ErrInvalidMaxResults is returned when the result cap is not positive.
	ErrInvalidMaxResults = errors.New("invalid max results: must be positive")

	// ErrInvalidDelay is returned when the inter-request delay is negative.
	// Use 0 for no delay between extractions.
	ErrInvalidDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidTimeout is returned when the page timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid page timeout: must be positive")

	// ErrInvalidMaxContentLength is returned when the content bound is
	// not positive; content must always be bounded.
	ErrInvalidMaxContentLength = errors.New("invalid max content length: must be positive")

	// ErrInvalidTopRecords is returned when the detailed-analysis count
	// is negative. Zero disables the section.
	ErrInvalidTopRecords = errors.New("invalid top records: must be non-negative")

	// ErrInvalidTableFormat is returned for a table format that is
	// neither "xlsx" nor "csv".
	ErrInvalidTableFormat = errors.New("invalid table format: must be \"xlsx\" or \"csv\"")
)
