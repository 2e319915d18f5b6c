// Package advisor is the resolution pipeline: validation, the fingerprint
// cache, the backend cascade and the session bookkeeping around them.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/cascade"
	"github.com/pario-ai/advisor/pkg/catalog"
	"github.com/pario-ai/advisor/pkg/journal"
	"github.com/pario-ai/advisor/pkg/models"
	"github.com/pario-ai/advisor/pkg/session"
)

// ErrInvalidRequest is wrapped by every validation failure.
var ErrInvalidRequest = models.ErrInvalidRequest

// Resolver answers a request. *cascade.Cascade is the production Resolver.
type Resolver interface {
	Resolve(ctx context.Context, req models.Request) (cascade.Response, error)
}

// Result is what a caller gets back for a request.
type Result struct {
	Text        string `json:"text"`
	Backend     string `json:"backend,omitempty"`
	CacheHit    bool   `json:"cache_hit"`
	Fingerprint string `json:"fingerprint"`
}

// Advisor answers profile and query requests for sessions.
type Advisor struct {
	resolver Resolver
	cache    *cache.Cache
	journal  *journal.Journal
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithCache puts c in front of the resolver.
func WithCache(c *cache.Cache) Option {
	return func(a *Advisor) { a.cache = c }
}

// WithJournal records every resolution in j.
func WithJournal(j *journal.Journal) Option {
	return func(a *Advisor) { a.journal = j }
}

// New creates an Advisor around resolver.
func New(resolver Resolver, opts ...Option) *Advisor {
	a := &Advisor{resolver: resolver}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Advise produces portfolio advice for a profile and stores it as the
// session's displayed advice. It returns session.ErrBusy while another
// submission is in flight and session.ErrStale if the session was reset
// before the answer arrived.
func (a *Advisor) Advise(ctx context.Context, sess *session.Context, p models.ProfileRequest) (Result, error) {
	locale, err := requestLocale(sess, p.Locale)
	if err != nil {
		return Result{}, err
	}
	p.Locale = locale
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	ticket, err := sess.Begin()
	if err != nil {
		return Result{}, err
	}

	res, err := a.resolve(ctx, sess.ID(), p)
	if err != nil {
		_ = sess.Fail(ticket)
		return Result{}, err
	}
	if err := sess.Complete(ticket, p, res.Text); err != nil {
		return res, err
	}
	return res, nil
}

// Ask answers a free-text question and appends it to the session log.
func (a *Advisor) Ask(ctx context.Context, sess *session.Context, q models.QueryRequest) (Result, error) {
	locale, err := requestLocale(sess, q.Locale)
	if err != nil {
		return Result{}, err
	}
	q.Locale = locale
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	ticket := sess.Ticket()
	res, err := a.resolve(ctx, sess.ID(), q)
	if err != nil {
		return Result{}, err
	}
	if err := sess.Record(ticket, q.Question, res.Text, res.Backend); err != nil {
		return res, err
	}
	return res, nil
}

// SetLocale switches the session locale. A change clears the whole cache;
// the conversation log and displayed advice are kept.
func (a *Advisor) SetLocale(sess *session.Context, locale string) (bool, error) {
	locale, ok := catalog.Canonical(locale)
	if !ok {
		return false, &models.ValidationError{Field: "locale", Reason: "is not supported"}
	}
	if !sess.SetLocale(locale) {
		return false, nil
	}
	if a.cache != nil {
		if err := a.cache.Clear(false); err != nil {
			return true, err
		}
	}
	zap.L().Debug("locale changed", zap.String("session", sess.ID()), zap.String("locale", locale))
	return true, nil
}

// NewConsultation resets the session's advice. In-flight results for it
// are discarded when they arrive.
func (a *Advisor) NewConsultation(sess *session.Context) {
	sess.Reset()
}

// Options returns the form catalog, memoized as a static cache entry.
func (a *Advisor) Options(ctx context.Context) (models.Options, error) {
	if a.cache == nil {
		return catalog.Options(), nil
	}
	text, _, err := a.cache.GetOrCompute(ctx, models.StaticRequest{Name: "options"},
		func(context.Context, models.Request) (string, error) {
			b, err := json.Marshal(catalog.Options())
			return string(b), err
		})
	if err != nil {
		return models.Options{}, eris.Wrap(err, "load options")
	}
	var opts models.Options
	if err := json.Unmarshal([]byte(text), &opts); err != nil {
		return models.Options{}, eris.Wrap(err, "decode options")
	}
	return opts, nil
}

// CacheStats reports cache counters. A disabled cache reports zeros.
func (a *Advisor) CacheStats() (models.CacheStats, error) {
	if a.cache == nil {
		return models.CacheStats{}, nil
	}
	return a.cache.Stats()
}

// ClearCache drops cached responses.
func (a *Advisor) ClearCache(expiredOnly bool) error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Clear(expiredOnly)
}

// Journal returns the resolution journal, which may be nil.
func (a *Advisor) Journal() *journal.Journal {
	return a.journal
}

// uncachedResponse carries a fallback answer out of the cache's compute
// function so it is returned without being stored.
type uncachedResponse struct {
	resp cascade.Response
}

func (u *uncachedResponse) Error() string { return "fallback response is not cached" }

func (a *Advisor) resolve(ctx context.Context, sessionID string, req models.Request) (Result, error) {
	start := time.Now()
	res := Result{Fingerprint: string(cache.FingerprintOf(req))}

	if a.cache == nil {
		resp, err := a.resolver.Resolve(ctx, req)
		if err != nil {
			return Result{}, eris.Wrap(err, "resolve")
		}
		res.Text, res.Backend = resp.Text, resp.UsedBackend
	} else {
		var used string
		text, hit, err := a.cache.GetOrCompute(ctx, req, func(ctx context.Context, req models.Request) (string, error) {
			resp, err := a.resolver.Resolve(ctx, req)
			if err != nil {
				return "", err
			}
			if resp.UsedBackend == models.BackendNone {
				return "", &uncachedResponse{resp: resp}
			}
			used = resp.UsedBackend
			return resp.Text, nil
		})
		var u *uncachedResponse
		switch {
		case errors.As(err, &u):
			res.Text, res.Backend = u.resp.Text, u.resp.UsedBackend
		case err != nil:
			return Result{}, eris.Wrap(err, "resolve")
		default:
			res.Text, res.Backend, res.CacheHit = text, used, hit
		}
	}

	latency := time.Since(start)
	zap.L().Info("request resolved",
		zap.String("session", sessionID),
		zap.String("category", string(req.Category())),
		zap.String("backend", res.Backend),
		zap.Bool("cache_hit", res.CacheHit),
		zap.Duration("latency", latency),
	)

	if a.journal != nil {
		err := a.journal.Record(context.WithoutCancel(ctx), models.Resolution{
			SessionID:   sessionID,
			Category:    req.Category(),
			Fingerprint: res.Fingerprint,
			Backend:     res.Backend,
			CacheHit:    res.CacheHit,
			LatencyMs:   latency.Milliseconds(),
		})
		if err != nil {
			zap.L().Warn("journal record failed", zap.Error(err))
		}
	}
	return res, nil
}

// requestLocale returns the canonical locale for a request, defaulting to
// the session's.
func requestLocale(sess *session.Context, locale string) (string, error) {
	if locale == "" {
		return sess.Locale(), nil
	}
	code, ok := catalog.Canonical(locale)
	if !ok {
		return "", &models.ValidationError{Field: "locale", Reason: "is not supported"}
	}
	return code, nil
}
