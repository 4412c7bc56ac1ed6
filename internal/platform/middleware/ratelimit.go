package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/memberportal/planinfo/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// Buckets untouched for IdleTTL are dropped every CleanupInterval.
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig allows a page load's burst of booklet and claims
// calls while capping scripted document downloads.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         40,
		IdleTTL:           10 * time.Minute,
		CleanupInterval:   time.Minute,
	}
}

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: now,
	}
}

// allow consumes a token if one is available and otherwise returns the
// whole seconds until the next token.
func (b *tokenBucket) allow(now time.Time) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.refillRate <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/b.refillRate) + 1
}

type rateLimiterStore struct {
	buckets map[string]*tokenBucket
	mu      sync.Mutex
	config  RateLimitConfig
	now     func() time.Time
}

func newRateLimiterStore(cfg RateLimitConfig, now func() time.Time) *rateLimiterStore {
	return &rateLimiterStore{buckets: make(map[string]*tokenBucket), config: cfg, now: now}
}

func (s *rateLimiterStore) bucket(key string) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		b = newTokenBucket(s.config.RequestsPerSecond, s.config.BurstSize, s.now())
		s.buckets[key] = b
	}
	return b
}

// startCleanup sweeps idle buckets every interval until ctx is cancelled.
func (s *rateLimiterStore) startCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// sweep drops buckets idle for at least IdleTTL. A bucket idle that long
// has refilled, so dropping it does not change what the next request sees
// as long as IdleTTL covers a full refill.
func (s *rateLimiterStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.config.IdleTTL)
	for key, b := range s.buckets {
		b.mu.Lock()
		idle := !b.lastRefill.After(cutoff)
		b.mu.Unlock()
		if idle {
			delete(s.buckets, key)
		}
	}
}

func (s *rateLimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RateLimit limits requests per authenticated member, falling back to the
// client IP for anonymous calls. Idle buckets are evicted until ctx is
// cancelled.
func RateLimit(ctx context.Context, cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newRateLimiterStore(cfg, time.Now)
	if cfg.IdleTTL > 0 && cfg.CleanupInterval > 0 {
		store.startCleanup(ctx, cfg.CleanupInterval)
	}
	return store.middleware()
}

func (s *rateLimiterStore) middleware() echo.MiddlewareFunc {
	limit := strconv.FormatFloat(s.config.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if member := auth.UserIDFromContext(c.Request().Context()); member != "" {
				key = "member:" + member
			}

			c.Response().Header().Set("X-RateLimit-Limit", limit)
			ok, retryAfter := s.bucket(key).allow(s.now())
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
