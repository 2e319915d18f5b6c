// Package journal records how every request was resolved in SQLite, for
// usage statistics.
package journal

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/pario-ai/advisor/pkg/models"
)

// Journal writes and queries resolution records.
type Journal struct {
	db        *sql.DB
	retention time.Duration
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

const createTable = `
CREATE TABLE IF NOT EXISTS resolutions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	backend TEXT NOT NULL,
	cache_hit INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resolutions_created ON resolutions(created_at);
CREATE INDEX IF NOT EXISTS idx_resolutions_session ON resolutions(session_id);
`

// Open opens (or creates) the journal at dbPath. A positive retention
// starts an hourly cleanup of older records.
func Open(dbPath string, retention time.Duration) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, eris.Wrap(err, "open journal db")
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "migrate journal db")
	}

	j := &Journal{
		db:        db,
		retention: retention,
		done:      make(chan struct{}),
	}
	if retention > 0 {
		j.wg.Add(1)
		go j.retentionLoop()
	}
	return j, nil
}

// Record stores a resolution. A nil Journal discards it.
func (j *Journal) Record(ctx context.Context, r models.Resolution) error {
	if j == nil {
		return nil
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO resolutions (session_id, category, fingerprint, backend, cache_hit, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, string(r.Category), r.Fingerprint, r.Backend, r.CacheHit, r.LatencyMs, r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return eris.Wrap(err, "record resolution")
	}
	return nil
}

// Recent returns up to limit resolutions, newest first. An empty sessionID
// matches every session.
func (j *Journal) Recent(ctx context.Context, sessionID string, limit int) ([]models.Resolution, error) {
	q := `SELECT id, session_id, category, fingerprint, backend, cache_hit, latency_ms, created_at
		FROM resolutions WHERE 1=1`
	var args []any
	if sessionID != "" {
		q += " AND session_id = ?"
		args = append(args, sessionID)
	}
	if limit <= 0 {
		limit = 100
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "query resolutions")
	}
	defer rows.Close()

	var out []models.Resolution
	for rows.Next() {
		var (
			r         models.Resolution
			category  string
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &category, &r.Fingerprint, &r.Backend,
			&r.CacheHit, &r.LatencyMs, &createdAt); err != nil {
			return nil, eris.Wrap(err, "scan resolution")
		}
		r.Category = models.Category(category)
		r.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates resolutions since the given time per category and
// backend.
func (j *Journal) Summary(ctx context.Context, since time.Time) ([]models.ResolutionSummary, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT category, backend, COUNT(*), SUM(cache_hit), AVG(latency_ms)
		 FROM resolutions WHERE created_at >= ?
		 GROUP BY category, backend ORDER BY category, backend`,
		since.UnixMilli(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "query summary")
	}
	defer rows.Close()

	var out []models.ResolutionSummary
	for rows.Next() {
		var (
			s        models.ResolutionSummary
			category string
		)
		if err := rows.Scan(&category, &s.Backend, &s.Count, &s.CacheHits, &s.AvgLatencyMs); err != nil {
			return nil, eris.Wrap(err, "scan summary")
		}
		s.Category = models.Category(category)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Cleanup deletes records older than the retention period.
func (j *Journal) Cleanup(ctx context.Context) (int64, error) {
	if j.retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-j.retention).UnixMilli()
	res, err := j.db.ExecContext(ctx, `DELETE FROM resolutions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "journal cleanup")
	}
	return res.RowsAffected()
}

// Close stops the retention goroutine and closes the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	var err error
	j.closeOnce.Do(func() {
		close(j.done)
		j.wg.Wait()
		err = j.db.Close()
	})
	return err
}

func (j *Journal) retentionLoop() {
	defer j.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			n, err := j.Cleanup(context.Background())
			if err != nil {
				zap.L().Warn("journal cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zap.L().Debug("journal cleanup", zap.Int64("deleted", n))
			}
		}
	}
}
