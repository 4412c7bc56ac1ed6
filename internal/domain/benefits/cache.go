package benefits

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/memberportal/planinfo/internal/platform/cache"
	"github.com/memberportal/planinfo/internal/platform/metrics"
)

// BookletCache keeps each member's available booklets in a cache.Store so
// repeat page loads skip the database. A nil *BookletCache always misses.
type BookletCache struct {
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewBookletCache(store cache.Store, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *BookletCache {
	return &BookletCache{store: store, ttl: ttl, metrics: m, logger: logger}
}

func bookletKey(memberID string) string {
	return "booklets:" + memberID
}

// Get returns the cached booklets for memberID. Store errors count as misses.
func (c *BookletCache) Get(ctx context.Context, memberID string) (AvailableBooklets, bool) {
	var a AvailableBooklets
	if c == nil {
		return a, false
	}
	data, ok, err := c.store.Get(ctx, bookletKey(memberID))
	if err != nil {
		c.logger.Warn().Err(err).Str("member_id", memberID).Msg("booklet cache read failed")
	}
	if err != nil || !ok {
		c.metrics.IncBookletLookup(false)
		return a, false
	}
	if err := json.Unmarshal(data, &a); err != nil {
		c.logger.Warn().Err(err).Str("member_id", memberID).Msg("discarding corrupt booklet cache entry")
		_ = c.store.Delete(ctx, bookletKey(memberID))
		c.metrics.IncBookletLookup(false)
		return AvailableBooklets{}, false
	}
	c.metrics.IncBookletLookup(true)
	return a, true
}

// Put caches a for memberID. Failures are logged and otherwise ignored.
func (c *BookletCache) Put(ctx context.Context, memberID string, a AvailableBooklets) {
	if c == nil {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, bookletKey(memberID), data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("member_id", memberID).Msg("booklet cache write failed")
	}
}

// Invalidate drops the cached booklets for memberID.
func (c *BookletCache) Invalidate(ctx context.Context, memberID string) {
	if c == nil {
		return
	}
	if err := c.store.Delete(ctx, bookletKey(memberID)); err != nil {
		c.logger.Warn().Err(err).Str("member_id", memberID).Msg("booklet cache invalidation failed")
	}
}
