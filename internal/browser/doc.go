// Package browser wraps headless-browser automation behind a narrow
// capability: fetch a rendered page and return its text and metadata,
// or evaluate a JavaScript expression against a loaded page.
//
// The rest of the pipeline depends only on this package's API, keeping
// the one genuinely non-portable dependency (a running Chrome) isolated
// and easy to substitute in tests.
package browser
