package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// CachedClient memoizes route lookups per endpoint pair so re-rendering
// the same pickup/dropoff does not hammer the routing server.
type CachedClient struct {
	inner Client
	ttl   time.Duration

	mu    sync.RWMutex
	store map[string]cacheEntry
}

type cacheEntry struct {
	p  Path
	ts time.Time
}

func NewCachedClient(inner Client, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, ttl: ttl, store: make(map[string]cacheEntry)}
}

func (c *CachedClient) Route(ctx context.Context, from, to models.Coord) (Path, error) {
	k := keyFor(from, to)

	c.mu.RLock()
	e, ok := c.store[k]
	c.mu.RUnlock()
	if ok && time.Since(e.ts) <= c.ttl {
		return e.p, nil
	}

	p, err := c.inner.Route(ctx, from, to)
	if err != nil {
		return Path{}, err
	}
	c.mu.Lock()
	c.store[k] = cacheEntry{p: p, ts: time.Now()}
	c.mu.Unlock()
	return p, nil
}

func keyFor(a, b models.Coord) string {
	return fmtCoord(a) + "->" + fmtCoord(b)
}

func fmtCoord(c models.Coord) string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}
