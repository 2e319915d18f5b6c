// Package history keeps a bounded, chronological log of answered questions.
package history

import (
	"sync"
	"time"

	"github.com/pario-ai/advisor/pkg/models"
)

// DefaultRetention is the number of records kept when none is configured.
const DefaultRetention = 10

// Log is a bounded conversation log. The oldest records are evicted once
// the retention cap is reached. Safe for concurrent use.
type Log struct {
	mu        sync.RWMutex
	records   []models.ConversationRecord
	retention int
	now       func() time.Time
}

// New creates a Log holding at most retention records.
func New(retention int) *Log {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Log{retention: retention, now: time.Now}
}

// Append records an answered question stamped with the current time.
func (l *Log) Append(question, answer, backend string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, models.ConversationRecord{
		Question:  question,
		Answer:    answer,
		Backend:   backend,
		Timestamp: l.now(),
	})
	if over := len(l.records) - l.retention; over > 0 {
		l.records = append(l.records[:0:0], l.records[over:]...)
	}
}

// Recent returns up to n of the newest records, oldest first.
func (l *Log) Recent(n int) []models.ConversationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		return []models.ConversationRecord{}
	}
	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]models.ConversationRecord, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}

// All returns every retained record, oldest first.
func (l *Log) All() []models.ConversationRecord {
	l.mu.RLock()
	n := len(l.records)
	l.mu.RUnlock()
	return l.Recent(n)
}

// Len returns the number of retained records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Retention returns the cap.
func (l *Log) Retention() int {
	return l.retention
}

// Reset drops every record.
func (l *Log) Reset() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}
