package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID_Generated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequestID()(func(c echo.Context) error { return nil })(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Error("expected generated request id")
	}
	if rec.Header().Get("X-Request-ID") != rid {
		t.Error("expected request id echoed in response header")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	RequestID()(func(c echo.Context) error { return nil })(c)
	if rid, _ := c.Get("request_id").(string); rid != "upstream-id" {
		t.Errorf("expected upstream-id, got %s", rid)
	}
}

func TestLogger_WritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	Logger(logger)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	if !strings.Contains(buf.String(), `"path":"/api/v1/notes"`) {
		t.Errorf("expected request log line, got %s", buf.String())
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Recovery(logger)(func(echo.Context) error { panic("boom") })(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("expected panic log entry")
	}
}

func TestMemoryLimiter_Allow(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "user-1", 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, _ := l.Allow(ctx, "user-1", 3, time.Minute)
	if ok {
		t.Error("fourth request should be rejected")
	}

	// A different identifier has its own budget.
	if ok, _ := l.Allow(ctx, "user-2", 3, time.Minute); !ok {
		t.Error("separate identifier should be allowed")
	}
}

func TestMemoryLimiter_PerKeyWindow(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	l.Allow(ctx, "user-1", 1, time.Minute)
	l.Allow(ctx, "user-2", 1, time.Minute)
	if ok, _ := l.Allow(ctx, "user-1", 1, time.Minute); ok {
		t.Fatal("user-1 should be over budget")
	}

	// Expire user-1's window only.
	l.mu.Lock()
	l.buckets["user-1"].start = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	if ok, _ := l.Allow(ctx, "user-1", 1, time.Minute); !ok {
		t.Error("user-1 should get a fresh window after expiry")
	}
	if ok, _ := l.Allow(ctx, "user-2", 1, time.Minute); ok {
		t.Error("user-2's window must not reset when user-1's expires")
	}
}

func TestRateLimit_Rejects(t *testing.T) {
	e := echo.New()
	l := NewMemoryLimiter()
	mw := RateLimit(l, 1)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := handler(c); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err := handler(c)
	if err == nil {
		t.Fatal("second request should be limited")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", err)
	}
}
