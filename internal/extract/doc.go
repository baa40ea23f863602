// Package extract fetches a page and turns it into a structured
// extraction record: title, meta description, and whitespace-normalized
// body text truncated to a safety bound. Two extractors are available:
// a headless-browser extractor that sees JavaScript-rendered content,
// and a static HTTP extractor for plain-HTML pages.
package extract
