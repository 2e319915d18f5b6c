// Package sqlite is a cache store backed by SQLite.
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/models"
)

// Store persists cache entries in a single SQLite table.
type Store struct {
	db *sql.DB
}

var _ cache.Store = (*Store)(nil)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	fingerprint TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	response TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	ttl_ms INTEGER NOT NULL
);
`

// New opens (or creates) the cache database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, eris.Wrap(err, "open cache db")
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "migrate cache db")
	}

	return &Store{db: db}, nil
}

// Get implements cache.Store. Expired rows are treated as absent.
func (s *Store) Get(fp cache.Fingerprint, now time.Time) (models.CacheEntry, bool) {
	var (
		entry     models.CacheEntry
		category  string
		createdAt int64
		ttlMs     int64
	)
	err := s.db.QueryRow(
		`SELECT fingerprint, category, response, created_at, ttl_ms FROM cache_entries WHERE fingerprint = ?`,
		string(fp),
	).Scan(&entry.Fingerprint, &category, &entry.Response, &createdAt, &ttlMs)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			zap.L().Warn("cache read failed",
				zap.String("fingerprint", string(fp)),
				zap.Error(err),
			)
		}
		return models.CacheEntry{}, false
	}

	entry.Category = models.Category(category)
	entry.CreatedAt = time.UnixMilli(createdAt)
	entry.TTL = time.Duration(ttlMs) * time.Millisecond
	if !entry.Live(now) {
		return models.CacheEntry{}, false
	}
	return entry, true
}

// Put implements cache.Store.
func (s *Store) Put(entry models.CacheEntry) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (fingerprint, category, response, created_at, ttl_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Fingerprint, string(entry.Category), entry.Response,
		entry.CreatedAt.UnixMilli(), entry.TTL.Milliseconds(),
	)
	if err != nil {
		return eris.Wrap(err, "cache put")
	}
	return nil
}

// Clear implements cache.Store. Rows with ttl_ms = 0 never expire.
func (s *Store) Clear(expiredOnly bool, now time.Time) error {
	var err error
	if expiredOnly {
		_, err = s.db.Exec(
			`DELETE FROM cache_entries WHERE ttl_ms > 0 AND ? - created_at >= ttl_ms`,
			now.UnixMilli(),
		)
	} else {
		_, err = s.db.Exec(`DELETE FROM cache_entries`)
	}
	if err != nil {
		return eris.Wrap(err, "cache clear")
	}
	return nil
}

// Len implements cache.Store.
func (s *Store) Len() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return 0, eris.Wrap(err, "cache count")
	}
	return count, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
