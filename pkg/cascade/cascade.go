// Package cascade resolves a request by trying generation backends in
// priority order and falling back to deterministic answers when all of them
// fail.
package cascade

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pario-ai/advisor/pkg/backend"
	"github.com/pario-ai/advisor/pkg/catalog"
	"github.com/pario-ai/advisor/pkg/config"
	"github.com/pario-ai/advisor/pkg/fallback"
	"github.com/pario-ai/advisor/pkg/models"
	"github.com/pario-ai/advisor/pkg/retry"
)

// Response is the outcome of a resolution.
type Response struct {
	Text        string `json:"text"`
	UsedBackend string `json:"used_backend"`
}

// Stage is one backend together with its attempt budget.
type Stage struct {
	Backend    backend.Backend
	MaxRetries int
	Timeout    time.Duration
}

// Cascade tries stages in order. It holds no state between calls.
type Cascade struct {
	stages     []Stage
	backoff    time.Duration
	maxBackoff time.Duration
}

// Option configures a Cascade.
type Option func(*Cascade)

// WithBackoff sets the delay between attempts on the same backend.
func WithBackoff(backoff, maxBackoff time.Duration) Option {
	return func(c *Cascade) {
		c.backoff = backoff
		c.maxBackoff = maxBackoff
	}
}

// New creates a Cascade over stages in the given order.
func New(stages []Stage, opts ...Option) *Cascade {
	c := &Cascade{stages: stages}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FromDescriptors builds one stage per descriptor, in list order.
func FromDescriptors(descs []models.BackendDescriptor, opts ...Option) (*Cascade, error) {
	stages := make([]Stage, 0, len(descs))
	for _, d := range descs {
		b, err := backend.New(d)
		if err != nil {
			return nil, eris.Wrap(err, "build cascade")
		}
		stages = append(stages, Stage{Backend: b, MaxRetries: d.MaxRetries, Timeout: d.Timeout})
	}
	return New(stages, opts...), nil
}

// FromConfig builds the cascade described by cfg.
func FromConfig(cfg *config.Config) (*Cascade, error) {
	return FromDescriptors(cfg.Descriptors(), WithBackoff(cfg.Retry.Backoff, cfg.Retry.MaxBackoff))
}

// Backends returns the stage names in priority order.
func (c *Cascade) Backends() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Backend.Name()
	}
	return names
}

// Resolve answers req. Backend failures are never surfaced: once every
// stage is exhausted, or the parent context is done, the deterministic
// fallback answers with UsedBackend set to models.BackendNone.
func (c *Cascade) Resolve(ctx context.Context, req models.Request) (Response, error) {
	prompt := BuildPrompt(req)
	category := req.Category()

	for _, stage := range c.stages {
		if ctx.Err() != nil {
			break
		}

		name := stage.Backend.Name()
		cfg := retry.Config{
			MaxAttempts:    stage.MaxRetries,
			AttemptTimeout: stage.Timeout,
			Backoff:        c.backoff,
			MaxBackoff:     c.maxBackoff,
			ShouldRetry:    func(err error) bool { return !backend.IsOverloaded(err) },
			OnRetry:        retry.Logger("generate", name),
		}

		start := time.Now()
		text, attempts, err := retry.Do(ctx, cfg, func(ctx context.Context) (string, error) {
			text, err := stage.Backend.Generate(ctx, prompt)
			if err == nil && strings.TrimSpace(text) == "" {
				return "", backend.Malformed(name, eris.New("empty generated text"))
			}
			return text, err
		})
		if err == nil {
			zap.L().Debug("backend answered",
				zap.String("backend", name),
				zap.String("category", string(category)),
				zap.Int("attempts", attempts),
				zap.Duration("latency", time.Since(start)),
			)
			return Response{Text: catalog.Compose(category, text), UsedBackend: name}, nil
		}

		zap.L().Warn("backend exhausted",
			zap.String("backend", name),
			zap.Int("attempts", attempts),
			zap.String("kind", backend.KindOf(err).String()),
			zap.Error(err),
		)
	}

	if ctx.Err() != nil {
		zap.L().Debug("resolution cancelled, using fallback", zap.Error(ctx.Err()))
	} else if len(c.stages) > 0 {
		zap.L().Info("all backends failed, using fallback", zap.String("category", string(category)))
	}
	return Response{Text: fallback.Respond(req), UsedBackend: models.BackendNone}, nil
}
