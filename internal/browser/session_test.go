package browser

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

// These tests cover session construction and option wiring. Tests that
// drive a real Chrome process belong in integration tests, not here.

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()

	s := NewSession()
	defer s.Close()

	if s.pageTimeout != 15*time.Second {
		t.Errorf("pageTimeout = %v, want 15s", s.pageTimeout)
	}
	if s.settleTime != time.Second {
		t.Errorf("settleTime = %v, want 1s", s.settleTime)
	}
	if s.browserCtx == nil || s.allocCtx == nil {
		t.Error("contexts must be initialized")
	}
}

func TestNewSessionOptions(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	s := NewSession(
		WithPageTimeout(30*time.Second),
		WithSettleTime(0),
		WithUserAgent("test-agent/1.0"),
		WithLogger(logger),
	)
	defer s.Close()

	if s.PageTimeout() != 30*time.Second {
		t.Errorf("PageTimeout() = %v, want 30s", s.PageTimeout())
	}
	if s.settleTime != 0 {
		t.Errorf("settleTime = %v, want 0", s.settleTime)
	}
	if s.userAgent != "test-agent/1.0" {
		t.Errorf("userAgent = %q, want test-agent/1.0", s.userAgent)
	}
}

func TestSessionCloseIsIdempotentSafe(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Close()
	// Context cancel funcs tolerate repeated calls.
	s.Close()
}

func TestNewTabRespectsCancelledContext(t *testing.T) {
	t.Parallel()

	s := NewSession()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := s.newTab(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}
