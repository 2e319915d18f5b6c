// Package memory is the in-process cache store.
package memory

import (
	"sync"
	"time"

	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/models"
)

// Store keeps entries in a map guarded by an RWMutex. Entries are replaced
// whole, so readers see either the old or the new value.
type Store struct {
	mu    sync.RWMutex
	items map[cache.Fingerprint]models.CacheEntry

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

var _ cache.Store = (*Store)(nil)

// New creates a Store. A positive janitor interval starts a goroutine that
// drops expired entries; Close stops it.
func New(janitor time.Duration) *Store {
	s := &Store{
		items: make(map[cache.Fingerprint]models.CacheEntry),
		done:  make(chan struct{}),
	}
	if janitor > 0 {
		s.wg.Add(1)
		go s.cleanup(janitor)
	}
	return s
}

// Get implements cache.Store.
func (s *Store) Get(fp cache.Fingerprint, now time.Time) (models.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.items[fp]
	if !ok || !entry.Live(now) {
		return models.CacheEntry{}, false
	}
	return entry, true
}

// Put implements cache.Store.
func (s *Store) Put(entry models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[cache.Fingerprint(entry.Fingerprint)] = entry
	return nil
}

// Clear implements cache.Store.
func (s *Store) Clear(expiredOnly bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !expiredOnly {
		s.items = make(map[cache.Fingerprint]models.CacheEntry)
		return nil
	}
	for fp, entry := range s.items {
		if !entry.Live(now) {
			delete(s.items, fp)
		}
	}
	return nil
}

// Len implements cache.Store.
func (s *Store) Len() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

// Close stops the janitor. It is safe to call more than once.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}

func (s *Store) cleanup(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			_ = s.Clear(true, now)
		}
	}
}
