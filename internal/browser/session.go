package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// PageData is the raw material a page fetch yields, before any
// normalization or truncation.
type PageData struct {
	// Title is the document title.
	Title string

	// MetaDescription is the content attribute of
	// <meta name="description">, or empty if absent.
	MetaDescription string

	// BodyText is the rendered inner text of <body>.
	BodyText string
}

// metaDescriptionJS reads the meta description tag. Returns empty string
// rather than null so the Evaluate target can stay a plain string.
const metaDescriptionJS = `(() => {
	const m = document.querySelector('meta[name="description"]');
	return m ? (m.getAttribute('content') || '') : '';
})()`

// bodyTextJS reads the rendered body text. Some pages (frameset relics,
// aborted loads) have no body; return empty rather than throwing.
const bodyTextJS = `(() => document.body ? document.body.innerText : '')()`

// Session owns a headless Chrome process shared by all page operations
// of a run. Each operation runs in its own browser tab with its own
// timeout; the underlying process is started lazily by chromedp on the
// first operation and torn down by Close.
type Session struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	pageTimeout time.Duration
	settleTime  time.Duration
	userAgent   string
	logger      *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPageTimeout bounds each individual page operation (navigate, wait,
// read). It does not bound the session lifetime.
func WithPageTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.pageTimeout = d
	}
}

// WithSettleTime adds a fixed wait after the body is ready, giving
// JavaScript-rendered pages a chance to populate. Zero disables it.
func WithSettleTime(d time.Duration) Option {
	return func(s *Session) {
		s.settleTime = d
	}
}

// WithUserAgent sets the User-Agent for all pages in the session.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a browser session. The caller must call Close to
// release the browser process, including on error paths; leaking a
// session leaks an OS-level Chrome process.
func NewSession(opts ...Option) *Session {
	s := &Session{
		pageTimeout: 15 * time.Second,
		settleTime:  time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	if s.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(s.userAgent))
	}

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	s.browserCtx, s.browserCancel = chromedp.NewContext(s.allocCtx)

	return s
}

// Close shuts down the browser process. Safe to call on a session whose
// browser never started.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

// PageTimeout returns the per-operation timeout the session was built with.
func (s *Session) PageTimeout() time.Duration {
	return s.pageTimeout
}

// FetchPage navigates to pageURL in a fresh tab, waits for the page to
// settle, and returns its title, meta description, and body text.
//
// The operation is bounded by the session's page timeout; ctx
// cancellation also aborts it.
func (s *Session) FetchPage(ctx context.Context, pageURL string) (*PageData, error) {
	tabCtx, cancel, err := s.newTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var data PageData
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.settleTime),
		chromedp.Title(&data.Title),
		chromedp.Evaluate(metaDescriptionJS, &data.MetaDescription),
		chromedp.Evaluate(bodyTextJS, &data.BodyText),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	s.logger.Debug("page fetched",
		"url", pageURL,
		"title", data.Title,
		"body_chars", len(data.BodyText),
	)
	return &data, nil
}

// Evaluate navigates to pageURL in a fresh tab and evaluates the
// JavaScript expression, storing the JSON-decoded result in out.
// Used by search providers to scrape structured data out of result pages.
func (s *Session) Evaluate(ctx context.Context, pageURL, expr string, out any) error {
	tabCtx, cancel, err := s.newTab(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	err = chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.settleTime),
		chromedp.Evaluate(expr, out),
	)
	if err != nil {
		return fmt.Errorf("evaluate on %s: %w", pageURL, err)
	}
	return nil
}

// newTab creates a tab context bounded by the page timeout. Caller
// cancellation is propagated into the chromedp context chain, which is
// rooted in the session rather than the caller's ctx.
func (s *Session) newTab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, s.pageTimeout)
	stop := context.AfterFunc(ctx, timeoutCancel)

	cancel := func() {
		stop()
		timeoutCancel()
		tabCancel()
	}
	return timeoutCtx, cancel, nil
}
