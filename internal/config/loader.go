package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".serpdigest"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration wraps time.Duration so YAML values like "2s" or "500ms"
// decode with time.ParseDuration semantics. yaml.v3 has no native
// duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// File is the on-disk YAML configuration. All fields are optional;
// zero values mean "keep the current (default or flag) value".
type File struct {
	// Provider selects the search provider ("google" or "serper").
	Provider string `yaml:"provider,omitempty"`

	// Static selects the plain-HTTP extractor.
	Static bool `yaml:"static,omitempty"`

	// MaxResults caps the number of search results per run.
	MaxResults int `yaml:"max_results,omitempty"`

	// Delay is the pause between extractions (Go duration, e.g. "2s").
	Delay Duration `yaml:"delay,omitempty"`

	// PageTimeout bounds each page operation (Go duration).
	PageTimeout Duration `yaml:"page_timeout,omitempty"`

	// MaxContentLength bounds stored page text, in runes.
	MaxContentLength int `yaml:"max_content_length,omitempty"`

	// TopRecords is the detailed-analysis record count.
	TopRecords int `yaml:"top_records,omitempty"`

	// OutputDir is where report files are written.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Format is the tabular report format ("xlsx" or "csv").
	Format string `yaml:"format,omitempty"`

	// UserAgent overrides the request User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Serper holds Serper API settings.
	Serper SerperFile `yaml:"serper,omitempty"`
}

// SerperFile holds Serper API settings from the configuration file.
type SerperFile struct {
	// APIKey authenticates against the Serper API.
	// The SERPER_API_KEY environment variable takes precedence.
	APIKey string `yaml:"api_key,omitempty"`

	// Endpoint overrides the API URL. Mainly useful for testing.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// LoadConfigFile loads settings from a YAML file. If the file does not
// exist it returns ErrConfigNotFound; callers decide whether that is an
// error based on whether the path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply copies the file's non-zero settings onto cfg. Flag handling in
// the CLI runs after this, so explicit flags win over the file.
func (f *File) Apply(cfg *Config) {
	if f.Provider != "" {
		cfg.Provider = f.Provider
	}
	if f.Static {
		cfg.StaticExtractor = true
	}
	if f.MaxResults > 0 {
		cfg.MaxResults = f.MaxResults
	}
	if f.Delay > 0 {
		cfg.RequestDelay = time.Duration(f.Delay)
	}
	if f.PageTimeout > 0 {
		cfg.PageTimeout = time.Duration(f.PageTimeout)
	}
	if f.MaxContentLength > 0 {
		cfg.MaxContentLength = f.MaxContentLength
	}
	if f.TopRecords > 0 {
		cfg.TopRecords = f.TopRecords
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.Format != "" {
		cfg.TableFormat = f.Format
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Serper.APIKey != "" {
		cfg.SerperAPIKey = f.Serper.APIKey
	}
	if f.Serper.Endpoint != "" {
		cfg.SerperEndpoint = f.Serper.Endpoint
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .serpdigest in the current directory
//  3. config.yaml in the XDG config directory
//  4. .serpdigest in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
