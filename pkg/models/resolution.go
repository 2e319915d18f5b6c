package models

import "time"

// Resolution records how one request was answered.
type Resolution struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	Category    Category  `json:"category"`
	Fingerprint string    `json:"fingerprint"`
	Backend     string    `json:"backend"`
	CacheHit    bool      `json:"cache_hit"`
	LatencyMs   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResolutionSummary aggregates resolutions per category and backend.
type ResolutionSummary struct {
	Category     Category `json:"category"`
	Backend      string   `json:"backend"`
	Count        int      `json:"count"`
	CacheHits    int      `json:"cache_hits"`
	AvgLatencyMs float64  `json:"avg_latency_ms"`
}
