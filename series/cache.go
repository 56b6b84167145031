package series

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/comodofi/perps/market"
)

// Fetcher is the capability the cache wraps: given a source, produce a
// series or fail.
type Fetcher interface {
	Fetch(ctx context.Context, src market.Source) (market.Series, error)
}

type cacheEntry struct {
	series  market.Series
	fetched time.Time
}

// Cache keeps the last good series per symbol behind a freshness window.
// A refresh failure inside the window is invisible; outside it the cache
// serves the stale series and logs a warning rather than failing the
// session. Refresh is caller-triggered: the cache never polls on its own.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache(fetcher Fetcher, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// SetClock replaces the cache's wall clock for tests.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }

// Get returns the series for an index, refreshing it when the cached copy
// is older than the TTL.
func (c *Cache) Get(ctx context.Context, idx market.Index) (market.Series, error) {
	c.mu.Lock()
	entry, ok := c.entries[idx.Symbol]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.fetched) < c.ttl {
		return entry.series, nil
	}

	s, err := c.fetcher.Fetch(ctx, idx.Source)
	if err != nil {
		if ok {
			c.logger.Warn("series refresh failed, serving stale data",
				slog.String("symbol", idx.Symbol),
				slog.Time("fetched", entry.fetched),
				slog.String("error", err.Error()),
			)
			return entry.series, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[idx.Symbol] = cacheEntry{series: s, fetched: c.now()}
	c.mu.Unlock()

	return s, nil
}

// Fetch bypasses the cache and loads a series straight from its source.
// Used when validating a candidate index before it has a cache entry.
func (c *Cache) Fetch(ctx context.Context, src market.Source) (market.Series, error) {
	return c.fetcher.Fetch(ctx, src)
}

// Invalidate drops the cached series for a symbol.
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	delete(c.entries, symbol)
	c.mu.Unlock()
}
