package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/cache/memory"
	"github.com/pario-ai/advisor/pkg/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func farmer() models.ProfileRequest {
	return models.ProfileRequest{
		Age: 30, Occupation: "Farmer", MonthlyIncome: 7500, Location: "Pune",
		FamilySize: "2-3", Health: "Good", Goal: "Basic Protection", Locale: "en",
	}
}

func newCache(t *testing.T) (*cache.Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.New(0)
	c := cache.New(store, cache.DefaultTTLPolicy(), cache.WithClock(clock.Now))
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

var errNotCached = errors.New("not cached")

// cached reports whether req is served from the cache without computing.
func cached(t *testing.T, c *cache.Cache, req models.Request) bool {
	t.Helper()
	_, hit, err := c.GetOrCompute(context.Background(), req, func(context.Context, models.Request) (string, error) {
		return "", errNotCached
	})
	if hit {
		return true
	}
	require.ErrorIs(t, err, errNotCached)
	return false
}

// racingStore misses the first lookup while another writer stores the entry.
type racingStore struct {
	cache.Store
	once  sync.Once
	entry models.CacheEntry
}

func (s *racingStore) Get(fp cache.Fingerprint, now time.Time) (models.CacheEntry, bool) {
	first := false
	s.once.Do(func() { first = true })
	if first {
		_ = s.Store.Put(s.entry)
		return models.CacheEntry{}, false
	}
	return s.Store.Get(fp, now)
}

func TestFingerprintNormalization(t *testing.T) {
	a := farmer()
	b := farmer()
	b.Location = "  pune "
	b.Occupation = "FARMER"
	assert.Equal(t, cache.FingerprintOf(a), cache.FingerprintOf(b))

	q1 := models.QueryRequest{Question: "What  documents do I need?"}
	q2 := &models.QueryRequest{Question: "what documents do i need?\n"}
	assert.Equal(t, cache.FingerprintOf(q1), cache.FingerprintOf(q2))
}

func TestFingerprintDistinguishes(t *testing.T) {
	base := farmer()

	older := base
	older.Age = 31
	assert.NotEqual(t, cache.FingerprintOf(base), cache.FingerprintOf(older))

	hindi := base
	hindi.Locale = "hi"
	assert.NotEqual(t, cache.FingerprintOf(base), cache.FingerprintOf(hindi))

	q := models.QueryRequest{Question: "premium"}
	claim := models.QueryRequest{Question: "premium", ClaimCategory: models.ClaimLife}
	assert.NotEqual(t, cache.FingerprintOf(q), cache.FingerprintOf(claim))
}

func TestGetOrComputeIdempotent(t *testing.T) {
	c, clock := newCache(t)
	var calls int
	compute := func(context.Context, models.Request) (string, error) {
		calls++
		return "generated advice", nil
	}

	first, hit, err := c.GetOrCompute(context.Background(), farmer(), compute)
	require.NoError(t, err)
	assert.False(t, hit)

	clock.Advance(29 * time.Minute)
	second, hit, err := c.GetOrCompute(context.Background(), farmer(), compute)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetOrComputeExpiry(t *testing.T) {
	c, clock := newCache(t)
	var calls int
	compute := func(context.Context, models.Request) (string, error) {
		calls++
		if calls == 1 {
			return "first", nil
		}
		return "second", nil
	}

	got, _, err := c.GetOrCompute(context.Background(), farmer(), compute)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	clock.Advance(30 * time.Minute)
	assert.False(t, cached(t, c, farmer()), "expired entries must not be served")

	got, hit, err := c.GetOrCompute(context.Background(), farmer(), compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "second", got)
	assert.Equal(t, 2, calls)
}

func TestQueryTTLShorterThanProfile(t *testing.T) {
	c, clock := newCache(t)
	q := models.QueryRequest{Question: "how much is pmsby"}
	compute := func(context.Context, models.Request) (string, error) { return "text", nil }

	_, _, err := c.GetOrCompute(context.Background(), q, compute)
	require.NoError(t, err)
	_, _, err = c.GetOrCompute(context.Background(), farmer(), compute)
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	assert.False(t, cached(t, c, q))
	assert.True(t, cached(t, c, farmer()))
}

func TestStaticNeverExpires(t *testing.T) {
	c, clock := newCache(t)
	req := models.StaticRequest{Name: "options"}
	_, _, err := c.GetOrCompute(context.Background(), req, func(context.Context, models.Request) (string, error) {
		return "{}", nil
	})
	require.NoError(t, err)

	clock.Advance(1000 * time.Hour)
	assert.True(t, cached(t, c, req))
}

func TestComputeErrorNotStored(t *testing.T) {
	c, _ := newCache(t)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), farmer(), func(context.Context, models.Request) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)

	_, _, err = c.GetOrCompute(context.Background(), farmer(), func(context.Context, models.Request) (string, error) {
		return "  ", nil
	})
	require.Error(t, err)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Entries)
}

func TestConcurrentMissesShareCompute(t *testing.T) {
	c, _ := newCache(t)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context, models.Request) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, _, err := c.GetOrCompute(context.Background(), farmer(), compute)
			assert.NoError(t, err)
			results[i] = text
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
	assert.LessOrEqual(t, calls.Load(), int32(callers))
	stats, err := c.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Entries, "at most one stored result per fingerprint")
}

func TestClearAndStats(t *testing.T) {
	c, _ := newCache(t)
	compute := func(context.Context, models.Request) (string, error) { return "x", nil }

	_, _, _ = c.GetOrCompute(context.Background(), farmer(), compute)
	_, _, _ = c.GetOrCompute(context.Background(), farmer(), compute)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Entries)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.InDelta(t, 50.0, stats.HitRate(), 0.001)

	require.NoError(t, c.Clear(false))
	assert.False(t, cached(t, c, farmer()))
}

func TestRecheckInsideFlightCountsAsHit(t *testing.T) {
	req := farmer()
	store := &racingStore{
		Store: memory.New(0),
		entry: models.CacheEntry{
			Fingerprint: string(cache.FingerprintOf(req)),
			Category:    req.Category(),
			Response:    "stored by another writer",
			CreatedAt:   time.Now(),
			TTL:         time.Hour,
		},
	}
	c := cache.New(store, cache.DefaultTTLPolicy())
	t.Cleanup(func() { _ = c.Close() })

	text, hit, err := c.GetOrCompute(context.Background(), req, func(context.Context, models.Request) (string, error) {
		t.Fatal("compute must not run when the entry is already stored")
		return "", nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "stored by another writer", text)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 0, stats.Misses)
}
