package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSelfReferential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rawURL string
		want   bool
	}{
		{"external result", "https://example.com/page", false},
		{"internal search path", "/search?q=more", true},
		{"fragment", "#top", true},
		{"empty", "", true},
		{"google host", "https://google.com/advanced_search", true},
		{"google subdomain", "https://maps.google.com/place", true},
		{"google in path only", "https://example.com/google.com", false},
		{"host containing google as substring", "https://notgoogle.community.org/", false},
		{"relative path", "imghp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := selfReferential(tt.rawURL); got != tt.want {
				t.Errorf("selfReferential(%q) = %v, want %v", tt.rawURL, got, tt.want)
			}
		})
	}
}

func TestFilterHits(t *testing.T) {
	t.Parallel()

	t.Run("preserves order and derives domains", func(t *testing.T) {
		t.Parallel()

		hits := []rawHit{
			{URL: "https://first.example.com/a", Title: "First"},
			{URL: "/search?q=internal", Title: "More results"},
			{URL: "https://second.example.org/b", Title: "Second"},
		}

		results := filterHits(hits, 20)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Title != "First" || results[1].Title != "Second" {
			t.Errorf("order not preserved: %+v", results)
		}
		if results[0].Domain != "first.example.com" {
			t.Errorf("domain = %q, want first.example.com", results[0].Domain)
		}
	})

	t.Run("caps at max results", func(t *testing.T) {
		t.Parallel()

		hits := make([]rawHit, 30)
		for i := range hits {
			hits[i] = rawHit{URL: "https://example.com/" + string(rune('a'+i)), Title: "t"}
		}

		if got := len(filterHits(hits, 20)); got != 20 {
			t.Errorf("expected 20 results, got %d", got)
		}
	})

	t.Run("drops duplicate URLs", func(t *testing.T) {
		t.Parallel()

		hits := []rawHit{
			{URL: "https://example.com/a", Title: "A"},
			{URL: "https://example.com/a", Title: "A again"},
		}

		if got := len(filterHits(hits, 20)); got != 1 {
			t.Errorf("expected 1 result, got %d", got)
		}
	})
}

func TestSerperProviderSearch(t *testing.T) {
	t.Parallel()

	t.Run("parses organic results", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if r.Header.Get("X-API-KEY") != "test-key" {
				t.Errorf("missing API key header")
			}

			var req serperRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			if req.Query != "golang testing" {
				t.Errorf("query = %q, want %q", req.Query, "golang testing")
			}

			resp := serperResponse{Organic: []serperOrganic{
				{Title: "Go Testing", Link: "https://go.dev/doc/tutorial/add-a-test", Snippet: "How to test"},
				{Title: "Testify", Link: "https://pkg.go.dev/testing", Snippet: "Package testing"},
			}}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				t.Errorf("encode response: %v", err)
			}
		}))
		defer srv.Close()

		p := NewSerperProvider("test-key", WithSerperEndpoint(srv.URL))
		results, err := p.Search(context.Background(), "golang testing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].URL != "https://go.dev/doc/tutorial/add-a-test" {
			t.Errorf("first URL = %q", results[0].URL)
		}
		if results[0].Domain != "go.dev" {
			t.Errorf("first domain = %q, want go.dev", results[0].Domain)
		}
		if results[1].Snippet != "Package testing" {
			t.Errorf("snippet = %q", results[1].Snippet)
		}
	})

	t.Run("caps results", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			organic := make([]serperOrganic, 15)
			for i := range organic {
				organic[i] = serperOrganic{Title: "t", Link: "https://example.com/p"}
			}
			_ = json.NewEncoder(w).Encode(serperResponse{Organic: organic})
		}))
		defer srv.Close()

		p := NewSerperProvider("k", WithSerperEndpoint(srv.URL), WithSerperMaxResults(10))
		results, err := p.Search(context.Background(), "q")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 10 {
			t.Errorf("expected 10 results, got %d", len(results))
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		p := NewSerperProvider("bad-key", WithSerperEndpoint(srv.URL))
		if _, err := p.Search(context.Background(), "q"); err == nil {
			t.Error("expected error for 403 response")
		}
	})

	t.Run("empty organic list yields empty results", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"organic": []}`))
		}))
		defer srv.Close()

		p := NewSerperProvider("k", WithSerperEndpoint(srv.URL))
		results, err := p.Search(context.Background(), "obscure query")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})
}
