package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/serpdigest/serpdigest/internal/browser"
	"github.com/serpdigest/serpdigest/internal/config"
	"github.com/serpdigest/serpdigest/internal/extract"
	"github.com/serpdigest/serpdigest/internal/log"
	"github.com/serpdigest/serpdigest/internal/model"
	"github.com/serpdigest/serpdigest/internal/pipeline"
	"github.com/serpdigest/serpdigest/internal/report"
	"github.com/serpdigest/serpdigest/internal/search"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Search a query and digest the top results into reports",
		Long: `Run searches the web for a query, visits the top results in relevance
order, extracts the text content of each page, and writes two report
files: a spreadsheet with one row per result, and a Markdown narrative
summarizing the run.

When no query is given as an argument, run prompts for one.

Examples:
  # Research a topic with the default headless-browser provider
  serpdigest run "go concurrency patterns"

  # Use the Serper hosted API instead of browser scraping
  serpdigest run --provider serper --serper-key KEY "go concurrency patterns"

  # Plain-HTTP extraction, CSV table, custom output directory
  serpdigest run --static --format csv --output-dir ./reports "go generics"

  # Print the full report as JSON to stdout
  serpdigest run --json "go generics"`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Provider flags
	cmd.Flags().StringP("provider", "p", "",
		"Search provider: google (browser scraping) or serper (hosted API)")
	cmd.Flags().StringP("serper-key", "k", "",
		"Serper API key (also read from SERPER_API_KEY)")

	// Extraction behavior flags
	cmd.Flags().BoolP("static", "s", false,
		"Use the plain-HTTP extractor instead of the headless browser")
	cmd.Flags().IntP("max-results", "n", config.DefaultMaxResults,
		"Maximum number of search results to process")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Pause between consecutive page visits")
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageTimeout,
		"Timeout for each page fetch")
	cmd.Flags().Int("max-content", config.DefaultMaxContentLength,
		"Maximum stored content per page, in characters")

	// Report flags
	cmd.Flags().Int("top", config.DefaultTopRecords,
		"Number of top pages analyzed in detail in the narrative report")
	cmd.Flags().StringP("output-dir", "o", ".",
		"Directory report files are written to")
	cmd.Flags().StringP("format", "f", config.FormatXLSX,
		"Tabular report format: xlsx or csv")
	cmd.Flags().BoolP("json", "j", false,
		"Print the full run report as JSON to stdout")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .serpdigest in current or home directory)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	query, err := resolveQuery(cmd, args)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runDigest(ctx, cmd, cfg, query, logger)
}

// resolveQuery takes the query from the positional arguments, or prompts
// for it interactively when none was given.
func resolveQuery(cmd *cobra.Command, args []string) (string, error) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query != "" {
		return query, nil
	}

	fmt.Fprint(cmd.OutOrStdout(), "Enter search query: ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no query provided")
	}

	query = strings.TrimSpace(scanner.Text())
	if query == "" {
		return "", errors.New("no query provided")
	}
	return query, nil
}

// buildConfig creates a Config by layering defaults, the optional
// configuration file, explicitly set flags, and the environment, in
// that order of increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, a missing file is fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Explicitly set flags override the file.
	if cmd.Flags().Changed("provider") {
		if cfg.Provider, err = cmd.Flags().GetString("provider"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("static") {
		if cfg.StaticExtractor, err = cmd.Flags().GetBool("static"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-results") {
		if cfg.MaxResults, err = cmd.Flags().GetInt("max-results"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("delay") {
		if cfg.RequestDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.PageTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-content") {
		if cfg.MaxContentLength, err = cmd.Flags().GetInt("max-content"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("top") {
		if cfg.TopRecords, err = cmd.Flags().GetInt("top"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("output-dir") {
		if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("format") {
		if cfg.TableFormat, err = cmd.Flags().GetString("format"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("serper-key") {
		if cfg.SerperAPIKey, err = cmd.Flags().GetString("serper-key"); err != nil {
			return nil, err
		}
	}
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Environment wins over both file and flags for the secret.
	if key := os.Getenv("SERPER_API_KEY"); key != "" {
		cfg.SerperAPIKey = key
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
// Attr values are truncated so logged page content cannot flood the
// terminal.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewTruncatingHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// runDigest executes the full search-extract-report run.
func runDigest(ctx context.Context, cmd *cobra.Command, cfg *config.Config, query string, logger *slog.Logger) error {
	logger.Info("starting run",
		"query", query,
		"provider", cfg.Provider,
		"static", cfg.StaticExtractor,
		"maxResults", cfg.MaxResults,
	)

	// A browser session is needed unless both the provider and the
	// extractor work over plain HTTP.
	var session *browser.Session
	needsBrowser := cfg.Provider == config.ProviderGoogle || !cfg.StaticExtractor
	if needsBrowser {
		session = browser.NewSession(
			browser.WithPageTimeout(cfg.PageTimeout),
			browser.WithUserAgent(cfg.UserAgent),
			browser.WithLogger(logger),
		)
		defer session.Close()
	}

	provider, err := buildProvider(cfg, session, logger)
	if err != nil {
		return err
	}
	extractor := buildExtractor(cfg, session, logger)

	// Progress spinner for the extraction phase. Suppressed in JSON
	// mode so stdout stays machine-readable.
	var spin *spinner.Spinner
	if !cfg.JSONOutput {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	}
	progress := func(rank, total int, result model.SearchResult) {
		if spin != nil {
			spin.Suffix = fmt.Sprintf(" extracting %d/%d: %s", rank, total, result.URL)
		}
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewSearchStep(provider, pipeline.WithSearchLogger(logger)),
		pipeline.NewExtractStep(extractor,
			pipeline.WithExtractDelay(cfg.RequestDelay),
			pipeline.WithExtractProgress(progress),
			pipeline.WithExtractLogger(logger),
		),
		pipeline.NewStatsStep(pipeline.WithStatsLogger(logger)),
	)

	runReport := model.NewRunReport(query, model.RunParameters{
		Provider:         provider.Name(),
		Extractor:        extractor.Name(),
		MaxResults:       cfg.MaxResults,
		Delay:            cfg.RequestDelay,
		MaxContentLength: cfg.MaxContentLength,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Researching %q...\n", query)
	if spin != nil {
		spin.Start()
	}
	err = p.Execute(ctx, runReport)
	if spin != nil {
		spin.Stop()
	}

	if err != nil {
		if errors.Is(err, pipeline.ErrNoResults) {
			fmt.Fprintf(cmd.OutOrStdout(), "No search results found for %q. Nothing to report.\n", query)
			return nil
		}
		return err
	}

	tablePath, narrativePath, err := writeReports(cfg, runReport)
	if err != nil {
		return err
	}

	if cfg.JSONOutput {
		_, err := report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint()).Write(runReport)
		return err
	}

	printSummary(cmd, runReport, tablePath, narrativePath)
	return nil
}

// buildProvider creates the configured search provider.
func buildProvider(cfg *config.Config, session *browser.Session, logger *slog.Logger) (search.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGoogle:
		return search.NewGoogleProvider(session,
			search.WithGoogleMaxResults(cfg.MaxResults),
			search.WithGoogleLogger(logger),
		), nil
	case config.ProviderSerper:
		return search.NewSerperProvider(cfg.SerperAPIKey,
			search.WithSerperEndpoint(cfg.SerperEndpoint),
			search.WithSerperMaxResults(cfg.MaxResults),
			search.WithSerperLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// buildExtractor creates the configured content extractor.
func buildExtractor(cfg *config.Config, session *browser.Session, logger *slog.Logger) extract.Extractor {
	if cfg.StaticExtractor {
		return extract.NewStaticExtractor(
			extract.WithStaticUserAgent(cfg.UserAgent),
			extract.WithStaticMaxContentLength(cfg.MaxContentLength),
			extract.WithStaticLogger(logger),
		)
	}
	return extract.NewBrowserExtractor(session,
		extract.WithBrowserMaxContentLength(cfg.MaxContentLength),
		extract.WithBrowserLogger(logger),
	)
}

// writeReports writes the tabular and narrative report files into the
// output directory, both stamped with the run's start time.
func writeReports(cfg *config.Config, runReport *model.RunReport) (string, string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tableName := report.TimestampedFilename("search_results", runReport.StartedAt, cfg.TableFormat)
	tablePath := filepath.Join(cfg.OutputDir, tableName)
	tableFile, err := os.Create(tablePath) //nolint:gosec // Path is built from user-chosen output dir
	if err != nil {
		return "", "", fmt.Errorf("failed to create %s: %w", tablePath, err)
	}
	defer tableFile.Close()

	var tableWriter report.Writer
	switch cfg.TableFormat {
	case config.FormatCSV:
		tableWriter = report.NewCSVWriter(tableFile)
	default:
		tableWriter = report.NewXLSXWriter(tableFile)
	}
	if _, err := tableWriter.Write(runReport); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", tablePath, err)
	}

	narrativeName := report.TimestampedFilename("search_report", runReport.StartedAt, "md")
	narrativePath := filepath.Join(cfg.OutputDir, narrativeName)
	narrativeFile, err := os.Create(narrativePath) //nolint:gosec // Path is built from user-chosen output dir
	if err != nil {
		return "", "", fmt.Errorf("failed to create %s: %w", narrativePath, err)
	}
	defer narrativeFile.Close()

	mdWriter := report.NewMarkdownWriter(narrativeFile, report.WithTopRecords(cfg.TopRecords))
	if _, err := mdWriter.Write(runReport); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", narrativePath, err)
	}

	return tablePath, narrativePath, nil
}

// printSummary prints the human-readable run summary to stdout.
func printSummary(cmd *cobra.Command, runReport *model.RunReport, tablePath, narrativePath string) {
	out := cmd.OutOrStdout()
	stats := runReport.Stats

	fmt.Fprintf(out, "\nRun completed in %s\n\n",
		runReport.FinishedAt.Sub(runReport.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "  Results analyzed:  %d\n", stats.TotalResults)
	fmt.Fprintf(out, "  Successful:        %d\n", stats.SuccessCount)
	fmt.Fprintf(out, "  Failed:            %d\n", stats.FailureCount)
	fmt.Fprintf(out, "  Avg content:       %.0f chars\n", stats.AvgContentLength)

	if len(stats.Domains) > 0 {
		fmt.Fprintf(out, "\nDomains (%d):\n", len(stats.Domains))
		for _, name := range runReport.SortedDomains() {
			fmt.Fprintf(out, "  %-40s %d page(s)\n", name, stats.Domains[name].Count)
		}
	}

	fmt.Fprintf(out, "\nReports written:\n")
	fmt.Fprintf(out, "  %s\n", tablePath)
	fmt.Fprintf(out, "  %s\n", narrativePath)
}
