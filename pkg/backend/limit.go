package backend

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Limited paces calls to a backend with a token bucket.
type Limited struct {
	Backend
	limiter *rate.Limiter
}

// WithRateLimit wraps b so it is called at most perSecond times per second.
// A non-positive rate returns b unchanged.
func WithRateLimit(b Backend, perSecond float64) Backend {
	if perSecond <= 0 {
		return b
	}
	return &Limited{Backend: b, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Generate waits for a token, then delegates. A wait that cannot finish
// before ctx ends is an Unavailable failure.
func (l *Limited) Generate(ctx context.Context, p Prompt) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", Unavailable(l.Name(), 0, eris.Wrap(err, "rate limit wait"))
	}
	return l.Backend.Generate(ctx, p)
}
