package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the live sessions.
type Manager struct {
	locale    string
	retention int
	display   int
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Context

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewManager creates a Manager whose sessions start with locale and keep
// retention log records, displaying the newest display of them.
func NewManager(locale string, retention, display int) *Manager {
	return &Manager{
		locale:    locale,
		retention: retention,
		display:   display,
		now:       time.Now,
		sessions:  make(map[string]*Context),
		done:      make(chan struct{}),
	}
}

// Create starts a new session.
func (m *Manager) Create() *Context {
	c := NewContext(uuid.NewString(), m.locale, m.retention, m.display)
	c.now = m.now
	c.lastActive = m.now()

	m.mu.Lock()
	m.sessions[c.id] = c
	m.mu.Unlock()
	return c
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Context, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	return c, ok
}

// Delete removes a session and reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// List returns the live session ids, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Prune removes sessions idle for longer than maxIdle and returns how many
// were removed. Processing sessions are kept.
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, c := range m.sessions {
		if c.State() == Processing {
			continue
		}
		if c.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartPruning sweeps idle sessions every interval until Close.
func (m *Manager) StartPruning(interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	m.wg.Add(1)
	go m.pruneLoop(interval, maxIdle)
}

func (m *Manager) pruneLoop(interval, maxIdle time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if n := m.Prune(maxIdle); n > 0 {
				zap.L().Debug("pruned idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Close stops the prune loop. It is safe to call more than once.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.done) })
	m.wg.Wait()
}
