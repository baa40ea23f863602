package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The policy constants (delay, caps) mirror the behavior the pipeline is
// specified with; they are deliberately configuration, not literals in
// the pipeline code.
const (
	// DefaultMaxResults caps the number of search results taken from a
	// provider. Search engines rarely show more than 20 organic results
	// on the first page, so requesting more adds noise, not signal.
	DefaultMaxResults = 20

	// DefaultRequestDelay is the fixed pause between consecutive page
	// extractions. This is a deliberate rate-limiting policy: issuing
	// requests back to back trips anti-automation defenses on many
	// sites and is impolite to the ones it doesn't.
	DefaultRequestDelay = 2 * time.Second

	// DefaultPageTimeout bounds how long a single page fetch may take,
	// including waiting for the page to settle. Applies per page, not
	// to the overall run.
	DefaultPageTimeout = 15 * time.Second

	// DefaultMaxContentLength is the safety bound on stored page text,
	// in runes. The recorded content length is measured before
	// truncation, so statistics are unaffected by this cap.
	DefaultMaxContentLength = 100_000

	// DefaultTopRecords is the number of successful records given a
	// detailed analysis section in the narrative report.
	DefaultTopRecords = 5

	// DefaultUserAgent is sent with browser and HTTP requests. A desktop
	// Chrome UA avoids the degraded pages some sites serve to obvious
	// bot user agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultSerperEndpoint is the Serper hosted search API URL.
	DefaultSerperEndpoint = "https://google.serper.dev/search"

	// AppName is the application name used for XDG directory paths.
	AppName = "serpdigest"
)

// Search provider names accepted by Config.Provider.
const (
	// ProviderGoogle scrapes the Google results page with a headless browser.
	ProviderGoogle = "google"

	// ProviderSerper queries the Serper hosted search API.
	ProviderSerper = "serper"
)

// Report table formats accepted by Config.TableFormat.
const (
	// FormatXLSX writes the tabular report as a spreadsheet.
	FormatXLSX = "xlsx"

	// FormatCSV writes the tabular report as CSV.
	FormatCSV = "csv"
)

// Config holds all configuration options for a serpdigest run.
// It is populated from CLI flags and the optional configuration file,
// then passed through the application via dependency injection rather
// than global state.
type Config struct {
	// Provider selects the search provider: ProviderGoogle or ProviderSerper.
	Provider string

	// StaticExtractor selects the plain-HTTP extractor instead of the
	// headless browser. Useful in environments without Chrome, at the
	// cost of missing JavaScript-rendered content.
	StaticExtractor bool

	// MaxResults caps the number of search results processed per run.
	MaxResults int

	// RequestDelay is the fixed pause between consecutive extractions.
	RequestDelay time.Duration

	// PageTimeout bounds each individual page operation.
	PageTimeout time.Duration

	// MaxContentLength is the safety bound on stored page text, in runes.
	MaxContentLength int

	// TopRecords is the number of successful records analyzed in detail
	// in the narrative report.
	TopRecords int

	// OutputDir is the directory report files are written to.
	OutputDir string

	// TableFormat selects the tabular report format: FormatXLSX or FormatCSV.
	TableFormat string

	// UserAgent is sent with browser and HTTP requests.
	UserAgent string

	// SerperAPIKey authenticates against the Serper API.
	// Required when Provider is ProviderSerper. Also read from the
	// SERPER_API_KEY environment variable.
	SerperAPIKey string

	// SerperEndpoint is the Serper API URL. Overridable for testing.
	SerperEndpoint string

	// JSONOutput prints the full run report as JSON to stdout instead
	// of the human-readable summary.
	JSONOutput bool

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is the explicit path to the configuration file.
	// If empty, the default search order applies (see FindConfigFile).
	ConfigFilePath string
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would be wrong; this constructor
// also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Provider:         ProviderGoogle,
		MaxResults:       DefaultMaxResults,
		RequestDelay:     DefaultRequestDelay,
		PageTimeout:      DefaultPageTimeout,
		MaxContentLength: DefaultMaxContentLength,
		TopRecords:       DefaultTopRecords,
		OutputDir:        ".",
		TableFormat:      FormatXLSX,
		UserAgent:        DefaultUserAgent,
		SerperEndpoint:   DefaultSerperEndpoint,
	}
}

// XDGConfigDir returns the XDG config directory for serpdigest.
// On Linux: ~/.config/serpdigest
// On macOS: ~/Library/Application Support/serpdigest
// On Windows: %APPDATA%\serpdigest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns a sentinel error
// describing the first invalid value found. Called once after flag and
// file merging, before any pipeline work begins.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGoogle, ProviderSerper:
	default:
		return ErrUnknownProvider
	}

	if c.Provider == ProviderSerper && c.SerperAPIKey == "" {
		return ErrMissingAPIKey
	}

	if c.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}

	// Zero delay is allowed (no pause); negative is not.
	if c.RequestDelay < 0 {
		return ErrInvalidDelay
	}

	if c.PageTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxContentLength <= 0 {
		return ErrInvalidMaxContentLength
	}

	if c.TopRecords < 0 {
		return ErrInvalidTopRecords
	}

	switch c.TableFormat {
	case FormatXLSX, FormatCSV:
	default:
		return ErrInvalidTableFormat
	}

	return nil
}
