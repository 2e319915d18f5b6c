package cache

import (
	"time"

	"github.com/pario-ai/advisor/pkg/models"
)

// TTLPolicy assigns a time-to-live per request category. A zero TTL never
// expires.
type TTLPolicy struct {
	Profile time.Duration
	Query   time.Duration
	Claim   time.Duration
}

// DefaultTTLPolicy returns the production TTLs.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Profile: 30 * time.Minute,
		Query:   10 * time.Minute,
		Claim:   time.Hour,
	}
}

// For returns the TTL of a category. Static lookups live for the process.
func (p TTLPolicy) For(c models.Category) time.Duration {
	switch c {
	case models.CategoryProfile:
		return p.Profile
	case models.CategoryQuery:
		return p.Query
	case models.CategoryClaim:
		return p.Claim
	default:
		return 0
	}
}
