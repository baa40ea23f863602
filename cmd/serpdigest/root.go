// Package main provides the entry point for the serpdigest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for serpdigest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serpdigest",
		Short: "Search the web and digest the top results into reports",
		Long: `serpdigest researches a topic end to end: it searches the web for a
query, visits the top results in relevance order, extracts the text
content of each page, and aggregates everything into a spreadsheet
plus a Markdown narrative report.

By default, results come from scraping the Google results page with a
headless browser. Use --provider serper with an API key for the hosted
search API instead.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
