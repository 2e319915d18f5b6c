package models

import "time"

// CacheEntry stores a resolved response under its request fingerprint.
type CacheEntry struct {
	Fingerprint string        `json:"fingerprint"`
	Category    Category      `json:"category"`
	Response    string        `json:"response"`
	CreatedAt   time.Time     `json:"created_at"`
	TTL         time.Duration `json:"ttl"` // zero never expires
}

// Live reports whether the entry is still visible at now.
func (e CacheEntry) Live(now time.Time) bool {
	if e.TTL <= 0 {
		return true
	}
	return now.Sub(e.CreatedAt) < e.TTL
}

// CacheStats reports cache performance metrics.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// HitRate returns hits as a percentage of lookups.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
