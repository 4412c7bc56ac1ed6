package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/memberportal/planinfo/internal/platform/auth"
)

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newTokenBucket(1, 2, start)

	if ok, _ := b.allow(start); !ok {
		t.Fatal("expected first request allowed")
	}
	if ok, _ := b.allow(start); !ok {
		t.Fatal("expected second request allowed")
	}
	ok, retry := b.allow(start)
	if ok {
		t.Fatal("expected third request rejected")
	}
	if retry != 2 {
		t.Errorf("expected retry-after 2, got %d", retry)
	}
	if ok, _ := b.allow(start.Add(time.Second)); !ok {
		t.Error("expected request allowed after refill")
	}
}

func TestRateLimit_PerMember(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mw := newRateLimiterStore(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}, func() time.Time { return now }).middleware()
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e := echo.New()

	call := func(member string) error {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/claims", nil)
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, member))
		return h(e.NewContext(req, httptest.NewRecorder()))
	}

	if err := call("m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := call("m1")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for second call, got %v", err)
	}
	if err := call("m2"); err != nil {
		t.Errorf("expected other member unaffected, got %v", err)
	}
}

func TestRateLimit_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Minute},
		func() time.Time { return now })

	store.bucket("member:old").allow(now)
	now = now.Add(45 * time.Second)
	store.bucket("member:recent").allow(now)
	if store.size() != 2 {
		t.Fatalf("expected 2 buckets, got %d", store.size())
	}

	now = now.Add(30 * time.Second)
	store.sweep()
	if store.size() != 1 {
		t.Fatalf("expected idle bucket evicted, got %d buckets", store.size())
	}
	if _, ok := store.buckets["member:recent"]; !ok {
		t.Error("expected recent bucket kept")
	}

	now = now.Add(time.Hour)
	store.sweep()
	if store.size() != 0 {
		t.Errorf("expected all buckets evicted, got %d", store.size())
	}
}

func TestRateLimit_CleanupStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Nanosecond, CleanupInterval: time.Millisecond}
	store := newRateLimiterStore(cfg, time.Now)
	store.startCleanup(ctx, cfg.CleanupInterval)

	store.bucket("ip:10.0.0.1").allow(time.Now())
	deadline := time.Now().Add(time.Second)
	for store.size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.size() != 0 {
		t.Error("expected background sweep to evict the idle bucket")
	}
	cancel()
}

func TestRequestTimeout_MapsDeadline(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequestTimeout(time.Millisecond)(func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	})(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %v", err)
	}
}

func TestRequestTimeout_PassesThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequestTimeout(time.Second)(func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected deadline on request context")
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
