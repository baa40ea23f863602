// Package search turns a free-text query into a ranked list of
// candidate pages. Two providers are available: scraping the Google
// results page through the browser capability, and the Serper hosted
// search API over plain HTTP.
package search
