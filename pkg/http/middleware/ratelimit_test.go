package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiterAllow(t *testing.T) {
	l := NewRateLimiter()
	// Capacity 2, no refill: two requests pass, the third is rejected.
	if !l.Allow("10.0.0.1", 2, 0) {
		t.Fatal("first request should pass")
	}
	if !l.Allow("10.0.0.1", 2, 0) {
		t.Fatal("second request should pass")
	}
	if l.Allow("10.0.0.1", 2, 0) {
		t.Fatal("third request should be rejected")
	}
	// A different client has its own bucket.
	if !l.Allow("10.0.0.2", 2, 0) {
		t.Fatal("other client should pass")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(1, 0))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("first request: status %d, want 200", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit request: status %d, want 429", code)
	}
}
