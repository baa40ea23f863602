package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/serpdigest/serpdigest/internal/browser"
	"github.com/serpdigest/serpdigest/internal/model"
)

// DefaultMaxContentLength bounds the normalized text stored per record.
// Large enough to hold any ordinary article in full; the pre-truncation
// length is preserved in the record's ContentLength field.
const DefaultMaxContentLength = 100_000

// maxResponseBytes caps how much of an HTTP response body the static
// extractor will read. Guards against endless or absurdly large pages.
const maxResponseBytes = 10 << 20

// Extractor fetches a single page and returns its extraction record.
// A returned error means the fetch itself failed; callers decide
// whether to abort or record the failure and continue.
type Extractor interface {
	// Extract fetches pageURL and returns a success-shaped record.
	Extract(ctx context.Context, pageURL string) (*model.ExtractionRecord, error)

	// Name returns the extractor's name for logging and report metadata.
	Name() string
}

// BrowserExtractor extracts pages through a headless browser session,
// so JavaScript-rendered content is visible in the body text.
type BrowserExtractor struct {
	session          *browser.Session
	maxContentLength int
	logger           *slog.Logger
}

// BrowserOption configures a BrowserExtractor.
type BrowserOption func(*BrowserExtractor)

// WithBrowserMaxContentLength bounds the stored content per record.
func WithBrowserMaxContentLength(n int) BrowserOption {
	return func(e *BrowserExtractor) {
		if n > 0 {
			e.maxContentLength = n
		}
	}
}

// WithBrowserLogger sets a custom logger for the extractor.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(e *BrowserExtractor) {
		e.logger = logger
	}
}

// NewBrowserExtractor creates an extractor on top of the given browser
// session. The session's lifecycle is owned by the caller.
func NewBrowserExtractor(session *browser.Session, opts ...BrowserOption) *BrowserExtractor {
	e := &BrowserExtractor{
		session:          session,
		maxContentLength: DefaultMaxContentLength,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extractor name.
func (e *BrowserExtractor) Name() string {
	return "browser"
}

// Extract fetches pageURL in a browser tab and builds a success-shaped
// record from its title, meta description, and normalized body text.
func (e *BrowserExtractor) Extract(ctx context.Context, pageURL string) (*model.ExtractionRecord, error) {
	page, err := e.session.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return buildRecord(pageURL, page.Title, page.MetaDescription, page.BodyText, e.maxContentLength), nil
}

// StaticExtractor extracts pages with a plain HTTP GET and an HTML
// parse. Faster and lighter than the browser, but blind to content that
// only exists after JavaScript runs.
type StaticExtractor struct {
	client           *http.Client
	userAgent        string
	maxContentLength int
	logger           *slog.Logger
}

// StaticOption configures a StaticExtractor.
type StaticOption func(*StaticExtractor)

// WithStaticHTTPClient sets a custom HTTP client.
func WithStaticHTTPClient(client *http.Client) StaticOption {
	return func(e *StaticExtractor) {
		e.client = client
	}
}

// WithStaticUserAgent sets the User-Agent sent with each request.
func WithStaticUserAgent(ua string) StaticOption {
	return func(e *StaticExtractor) {
		e.userAgent = ua
	}
}

// WithStaticMaxContentLength bounds the stored content per record.
func WithStaticMaxContentLength(n int) StaticOption {
	return func(e *StaticExtractor) {
		if n > 0 {
			e.maxContentLength = n
		}
	}
}

// WithStaticLogger sets a custom logger for the extractor.
func WithStaticLogger(logger *slog.Logger) StaticOption {
	return func(e *StaticExtractor) {
		e.logger = logger
	}
}

// NewStaticExtractor creates an HTTP-based extractor.
func NewStaticExtractor(opts ...StaticOption) *StaticExtractor {
	e := &StaticExtractor{
		client:           &http.Client{Timeout: 30 * time.Second},
		maxContentLength: DefaultMaxContentLength,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extractor name.
func (e *StaticExtractor) Name() string {
	return "static"
}

// Extract GETs pageURL, parses the HTML, and builds a success-shaped
// record. Non-2xx responses and unparseable bodies are errors.
func (e *StaticExtractor) Extract(ctx context.Context, pageURL string) (*model.ExtractionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	metaDesc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	bodyText := doc.Find("body").First().Text()

	e.logger.Debug("page fetched",
		"url", pageURL,
		"title", title,
		"body_chars", len(bodyText),
	)
	return buildRecord(pageURL, title, strings.TrimSpace(metaDesc), bodyText, e.maxContentLength), nil
}

// buildRecord normalizes the body text and assembles a success-shaped
// record. ContentLength is the rune count of the normalized text before
// truncation, so it may exceed the stored content's length.
func buildRecord(pageURL, title, metaDesc, bodyText string, maxContentLength int) *model.ExtractionRecord {
	content := Normalize(bodyText)
	return &model.ExtractionRecord{
		URL:             pageURL,
		Title:           title,
		MetaDescription: metaDesc,
		Content:         truncateRunes(content, maxContentLength),
		ContentLength:   utf8.RuneCountInString(content),
		ExtractedAt:     time.Now(),
		Status:          model.StatusSuccess,
	}
}
