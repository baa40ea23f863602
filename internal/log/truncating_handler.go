package log

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the default bound on logged attribute values.
// 256 runes is enough to identify a page or error while keeping a log
// line on one screen.
const DefaultMaxValueLen = 256

// TruncatingHandler wraps an slog.Handler and truncates oversized string
// attribute values before passing records on. Extracted page text can be
// 100k characters; logging it verbatim makes the log unusable.
//
// Design decision: We use a handler wrapper rather than truncating at
// each call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay free of formatting concerns
type TruncatingHandler struct {
	// handler is the underlying slog handler that receives truncated records.
	handler slog.Handler

	// maxValueLen is the maximum attribute value length in runes.
	maxValueLen int
}

// TruncatingHandlerOption configures a TruncatingHandler.
type TruncatingHandlerOption func(*TruncatingHandler)

// WithMaxValueLen sets the maximum logged value length in runes.
// Values smaller than 8 are ignored to keep the truncation marker legible.
func WithMaxValueLen(n int) TruncatingHandlerOption {
	return func(h *TruncatingHandler) {
		if n >= 8 {
			h.maxValueLen = n
		}
	}
}

// NewTruncatingHandler creates a TruncatingHandler wrapping the given
// handler. If handler is nil, slog.Default().Handler() is used.
func NewTruncatingHandler(handler slog.Handler, opts ...TruncatingHandlerOption) *TruncatingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	h := &TruncatingHandler{
		handler:     handler,
		maxValueLen: DefaultMaxValueLen,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle truncates the record's attributes and passes it on.
func (h *TruncatingHandler) Handle(ctx context.Context, r slog.Record) error {
	truncated := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		truncated.AddAttrs(h.truncateAttr(a))
		return true
	})

	return h.handler.Handle(ctx, truncated)
}

// WithAttrs returns a new handler with the given attributes added,
// truncated first.
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	truncated := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		truncated[i] = h.truncateAttr(a)
	}
	return &TruncatingHandler{handler: h.handler.WithAttrs(truncated), maxValueLen: h.maxValueLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{handler: h.handler.WithGroup(name), maxValueLen: h.maxValueLen}
}

// truncateAttr truncates a single attribute, recursively handling groups.
func (h *TruncatingHandler) truncateAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		truncated := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			truncated[i] = h.truncateAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(truncated...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	s := a.Value.String()
	n := utf8.RuneCountInString(s)
	if n <= h.maxValueLen {
		return a
	}

	runes := []rune(s)
	short := fmt.Sprintf("%s... (%d chars total)", string(runes[:h.maxValueLen]), n)
	return slog.String(a.Key, short)
}
