// Package cache memoizes resolved responses by request fingerprint.
package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pario-ai/advisor/pkg/models"
)

// Store persists cache entries. Implementations must be safe for concurrent
// use and keep at most one entry per fingerprint.
type Store interface {
	// Get returns the entry for fp if one is live at now.
	Get(fp Fingerprint, now time.Time) (models.CacheEntry, bool)
	// Put stores or replaces the entry for its fingerprint.
	Put(entry models.CacheEntry) error
	// Clear removes entries; with expiredOnly, only those dead at now.
	Clear(expiredOnly bool, now time.Time) error
	// Len counts stored entries, live or not.
	Len() (int64, error)
	Close() error
}

// ComputeFunc produces the response for a request on a cache miss.
type ComputeFunc func(ctx context.Context, req models.Request) (string, error)

// Cache is the fingerprint cache in front of the resolution cascade.
type Cache struct {
	store  Store
	policy TTLPolicy
	now    func() time.Time
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New wraps a store with the given TTL policy.
func New(store Store, policy TTLPolicy, opts ...Option) *Cache {
	c := &Cache{store: store, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// stored marks a value found in the store by the in-flight recheck.
type stored string

// GetOrCompute returns the cached response for req, or calls compute and
// stores its result under the category TTL. Concurrent misses on the same
// fingerprint share one compute call. The boolean reports a cache hit.
func (c *Cache) GetOrCompute(ctx context.Context, req models.Request, compute ComputeFunc) (string, bool, error) {
	fp := FingerprintOf(req)
	if entry, ok := c.store.Get(fp, c.now()); ok {
		c.hits.Add(1)
		return entry.Response, true, nil
	}

	v, err, shared := c.group.Do(string(fp), func() (any, error) {
		// A concurrent caller may have stored the entry while we waited.
		if entry, ok := c.store.Get(fp, c.now()); ok {
			return stored(entry.Response), nil
		}
		text, err := compute(ctx, req)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", eris.Errorf("cache: empty response for %s request", req.Category())
		}
		entry := models.CacheEntry{
			Fingerprint: string(fp),
			Category:    req.Category(),
			Response:    text,
			CreatedAt:   c.now(),
			TTL:         c.policy.For(req.Category()),
		}
		if err := c.store.Put(entry); err != nil {
			zap.L().Warn("cache put failed",
				zap.String("fingerprint", string(fp)),
				zap.Error(err),
			)
		}
		return text, nil
	})
	if err != nil {
		c.misses.Add(1)
		return "", false, err
	}
	if shared {
		zap.L().Debug("cache computation shared", zap.String("fingerprint", string(fp)))
	}
	if text, ok := v.(stored); ok {
		c.hits.Add(1)
		return string(text), true, nil
	}
	c.misses.Add(1)
	return v.(string), false, nil
}

// Clear drops entries. Locale changes call it with expiredOnly=false.
func (c *Cache) Clear(expiredOnly bool) error {
	if err := c.store.Clear(expiredOnly, c.now()); err != nil {
		return eris.Wrap(err, "cache: clear")
	}
	return nil
}

// Stats reports the entry count and lookup counters.
func (c *Cache) Stats() (models.CacheStats, error) {
	n, err := c.store.Len()
	if err != nil {
		return models.CacheStats{}, eris.Wrap(err, "cache: stats")
	}
	return models.CacheStats{
		Entries: n,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}, nil
}

// Close releases the store.
func (c *Cache) Close() error {
	return c.store.Close()
}
