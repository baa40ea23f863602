// Package main provides the entry point for the serpdigest CLI.
//
// serpdigest researches a topic by searching the web, extracting the
// content of the top results, and producing a spreadsheet of the data
// plus a Markdown narrative report.
//
// Usage:
//
//	serpdigest run "your search query"
//	serpdigest run --provider serper "your search query"
//
// See --help for all available options.
package main

// main is the entry point for serpdigest.
func main() {
	Execute()
}
