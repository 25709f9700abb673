package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/disco/internal/logger"
	"github.com/MrSnakeDoc/disco/internal/sheets"
)

// Resolver is the part of sheets.Resolver the cache sits in front of.
type Resolver interface {
	Resolve(ctx context.Context) (sheets.Result, error)
	Preferred() string
	Reset()
}

// Options configures a Cache.
type Options struct {
	Enabled bool
	TTL     time.Duration

	// Interval is the periodic invalidation period, reported by Status only.
	Interval time.Duration
}

// Status is a point-in-time view of the cache.
type Status struct {
	Enabled          bool      `json:"enabled"`
	Backend          string    `json:"backend"`
	TTL              string    `json:"ttl"`
	Interval         string    `json:"invalidationInterval"`
	Entries          int       `json:"entries"`
	Locator          string    `json:"locator,omitempty"`
	LastFetch        time.Time `json:"lastFetch"`
	LastInvalidation time.Time `json:"lastInvalidation"`
	Hits             int64     `json:"hits"`
	Misses           int64     `json:"misses"`
}

// Cache serves the collection rows from a snapshot while it is fresh and
// falls back to the resolver otherwise.
//
// A snapshot is fresh when it is younger than the TTL and was fetched after
// the last invalidation.
type Cache struct {
	resolver Resolver
	store    Store
	opts     Options
	log      logger.Logger
	now      func() time.Time

	mu               sync.RWMutex
	lastFetch        time.Time
	lastInvalidation time.Time

	// generation counts invalidations; reads that span one are not stored.
	generation atomic.Uint64

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache over resolver. A nil store defaults to memory.
func New(resolver Resolver, store Store, opts Options, log logger.Logger) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cache{
		resolver: resolver,
		store:    store,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Rows returns the collection rows, from cache when possible.
func (c *Cache) Rows(ctx context.Context) (sheets.Result, error) {
	if !c.opts.Enabled {
		return c.resolver.Resolve(ctx)
	}

	if loc := c.resolver.Preferred(); loc != "" {
		snap, ok, err := c.store.Get(ctx, loc)
		if err != nil {
			c.log.Warn("cache read failed", logger.String("backend", c.store.Name()), logger.Error(err))
		}
		if ok && c.fresh(snap) {
			c.hits.Add(1)
			return sheets.Result{Status: sheets.StatusFound, Locator: snap.Locator, Rows: snap.Rows}, nil
		}
	}

	c.misses.Add(1)
	start := c.now()
	gen := c.generation.Load()
	res, err := c.resolver.Resolve(ctx)
	if err != nil {
		return sheets.Result{}, err
	}

	if res.Status == sheets.StatusFound {
		c.remember(ctx, Snapshot{Locator: res.Locator, Rows: res.Rows, FetchedAt: start}, gen)
	}
	return res, nil
}

// remember stores snap unless an invalidation happened while it was read.
func (c *Cache) remember(ctx context.Context, snap Snapshot, gen uint64) {
	if c.generation.Load() != gen {
		c.log.Debug("discarding rows read across an invalidation", logger.String("locator", snap.Locator))
		return
	}
	if err := c.store.Put(ctx, snap, c.opts.TTL); err != nil {
		c.log.Warn("cache write failed", logger.String("backend", c.store.Name()), logger.Error(err))
	}
	c.mu.Lock()
	c.lastFetch = snap.FetchedAt
	c.mu.Unlock()
}

// Fresh bypasses the cache entirely. Writes use it to locate rows.
func (c *Cache) Fresh(ctx context.Context) (sheets.Result, error) {
	return c.resolver.Resolve(ctx)
}

// Invalidate drops every snapshot and forgets the resolved locator.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.lastInvalidation = c.now()
	c.mu.Unlock()
	c.generation.Add(1)

	c.resolver.Reset()
	return c.store.Clear(ctx)
}

// Status reports the cache state.
func (c *Cache) Status(ctx context.Context) Status {
	n, err := c.store.Len(ctx)
	if err != nil {
		c.log.Warn("cache size unavailable", logger.Error(err))
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return Status{
		Enabled:          c.opts.Enabled,
		Backend:          c.store.Name(),
		TTL:              c.opts.TTL.String(),
		Interval:         c.opts.Interval.String(),
		Entries:          n,
		Locator:          c.resolver.Preferred(),
		LastFetch:        c.lastFetch,
		LastInvalidation: c.lastInvalidation,
		Hits:             c.hits.Load(),
		Misses:           c.misses.Load(),
	}
}

func (c *Cache) fresh(snap Snapshot) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if snap.FetchedAt.Before(c.lastInvalidation) {
		return false
	}
	return c.now().Sub(snap.FetchedAt) < c.opts.TTL
}
