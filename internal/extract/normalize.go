package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	newlineRuns    = regexp.MustCompile(`\n+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Normalize collapses the raw page text into a single line of
// single-spaced words: Unicode NFC first, then newline runs to one
// newline, then all whitespace runs (including that newline) to one
// space, then outer whitespace trimmed.
//
// The two-pass collapse looks redundant but is deliberate: the first
// pass keeps the intermediate form stable for texts where newline runs
// and other whitespace interleave, so the output is identical no matter
// how the source mixed them.
func Normalize(raw string) string {
	s := norm.NFC.String(raw)
	s = newlineRuns.ReplaceAllString(s, "\n")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncateRunes returns s cut to at most max runes. Counting runes, not
// bytes, keeps multi-byte text intact at the boundary.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
