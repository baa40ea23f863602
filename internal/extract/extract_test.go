package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/serpdigest/serpdigest/internal/model"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"newline runs collapse", "a\n\n\nb", "a b"},
		{"mixed whitespace collapses", "a \t b\n\n  c", "a b c"},
		{"outer whitespace trimmed", "  \n padded \t ", "padded"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"tabs between words", "col1\tcol2\tcol3", "col1 col2 col3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeNFC(t *testing.T) {
	t.Parallel()

	// e + combining acute accent composes to the single rune é.
	decomposed := "café"
	got := Normalize(decomposed)
	if got != "café" {
		t.Errorf("Normalize(%q) = %q, want %q", decomposed, got, "café")
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under bound untouched", "abc", 10, "abc"},
		{"at bound untouched", "abc", 3, "abc"},
		{"over bound cut", "abcdef", 3, "abc"},
		{"multibyte cut on rune boundary", "あいうえお", 2, "あい"},
		{"zero bound disables", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := truncateRunes(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateRunes produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestStaticExtractor(t *testing.T) {
	t.Parallel()

	t.Run("extracts title, description, and body", func(t *testing.T) {
		t.Parallel()

		const page = `<!DOCTYPE html>
<html>
<head>
  <title>Test Page</title>
  <meta name="description" content="A page for testing.">
</head>
<body>
  <h1>Heading</h1>
  <p>First   paragraph.</p>

  <p>Second paragraph.</p>
</body>
</html>`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("User-Agent"); got != "test-agent" {
				t.Errorf("User-Agent = %q, want test-agent", got)
			}
			_, _ = w.Write([]byte(page))
		}))
		defer srv.Close()

		e := NewStaticExtractor(WithStaticUserAgent("test-agent"))
		rec, err := e.Extract(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Status != model.StatusSuccess {
			t.Errorf("status = %q, want success", rec.Status)
		}
		if rec.Title != "Test Page" {
			t.Errorf("title = %q", rec.Title)
		}
		if rec.MetaDescription != "A page for testing." {
			t.Errorf("meta description = %q", rec.MetaDescription)
		}
		if !strings.Contains(rec.Content, "First paragraph.") {
			t.Errorf("content missing normalized paragraph: %q", rec.Content)
		}
		if strings.Contains(rec.Content, "  ") {
			t.Errorf("content contains whitespace run: %q", rec.Content)
		}
		if rec.ContentLength != utf8.RuneCountInString(rec.Content) {
			t.Errorf("content length %d != rune count %d for untruncated content",
				rec.ContentLength, utf8.RuneCountInString(rec.Content))
		}
		if rec.ExtractedAt.IsZero() {
			t.Error("extracted-at not set")
		}
	})

	t.Run("content length survives truncation", func(t *testing.T) {
		t.Parallel()

		body := strings.Repeat("word ", 100)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><head><title>t</title></head><body>" + body + "</body></html>"))
		}))
		defer srv.Close()

		e := NewStaticExtractor(WithStaticMaxContentLength(50))
		rec, err := e.Extract(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := utf8.RuneCountInString(rec.Content); got != 50 {
			t.Errorf("stored content is %d runes, want 50", got)
		}
		if rec.ContentLength <= 50 {
			t.Errorf("content length %d should reflect the pre-truncation size", rec.ContentLength)
		}
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		e := NewStaticExtractor()
		if _, err := e.Extract(context.Background(), srv.URL); err == nil {
			t.Error("expected error for 404 response")
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><body>ok</body></html>"))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := NewStaticExtractor()
		if _, err := e.Extract(ctx, srv.URL); err == nil {
			t.Error("expected error for cancelled context")
		}
	})

	t.Run("missing meta description yields empty field", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><head><title>bare</title></head><body>text</body></html>"))
		}))
		defer srv.Close()

		e := NewStaticExtractor()
		rec, err := e.Extract(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.MetaDescription != "" {
			t.Errorf("meta description = %q, want empty", rec.MetaDescription)
		}
	})
}

func TestBuildRecord(t *testing.T) {
	t.Parallel()

	rec := buildRecord("https://example.com", "Title", "Desc", "body\n\ntext", 100)
	if rec.Content != "body text" {
		t.Errorf("content = %q, want %q", rec.Content, "body text")
	}
	if rec.ContentLength != 9 {
		t.Errorf("content length = %d, want 9", rec.ContentLength)
	}
	if !rec.Succeeded() {
		t.Error("record should report success")
	}
}
