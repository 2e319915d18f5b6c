// Package backend talks to text-generation services. Every failure is
// reported as a *Error tagged with a Kind so the cascade can tell a retryable
// failure from an overloaded service without looking at message text.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pario-ai/advisor/pkg/models"
)

// Prompt is a backend-neutral generation request.
type Prompt struct {
	System string
	User   string
}

// Text flattens the prompt for backends without a system role.
func (p Prompt) Text() string {
	if p.System == "" {
		return p.User
	}
	return p.System + "\n\n" + p.User
}

// Backend generates text for a prompt.
type Backend interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Kind classifies a backend failure.
type Kind int

const (
	// KindUnavailable covers transport errors, timeouts and non-success
	// statuses. The attempt may be retried.
	KindUnavailable Kind = iota
	// KindOverloaded is an explicit temporary-capacity signal. Remaining
	// attempts on the same backend are skipped.
	KindOverloaded
	// KindMalformed is an unparseable or empty payload. It is retried like
	// KindUnavailable.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindOverloaded:
		return "overloaded"
	case KindMalformed:
		return "malformed"
	default:
		return "unavailable"
	}
}

// Error is a tagged backend failure.
type Error struct {
	Backend    string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s %s (status %d): %v", e.Backend, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("backend %s %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unavailable tags err as a retryable failure.
func Unavailable(backend string, status int, err error) *Error {
	return &Error{Backend: backend, Kind: KindUnavailable, StatusCode: status, Err: err}
}

// Overloaded tags err as a temporary-capacity failure.
func Overloaded(backend string, status int, err error) *Error {
	return &Error{Backend: backend, Kind: KindOverloaded, StatusCode: status, Err: err}
}

// Malformed tags err as an unusable payload.
func Malformed(backend string, err error) *Error {
	return &Error{Backend: backend, Kind: KindMalformed, Err: err}
}

// KindOf returns the Kind of err. Untagged errors are KindUnavailable.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnavailable
}

// IsOverloaded reports whether err carries the overload signal.
func IsOverloaded(err error) bool {
	return err != nil && KindOf(err) == KindOverloaded
}

// checkText rejects empty or whitespace-only generations.
func checkText(backend, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Malformed(backend, eris.New("empty generated text"))
	}
	return text, nil
}

// New builds the backend described by d, rate limited when d.RateLimit is
// set.
func New(d models.BackendDescriptor) (Backend, error) {
	var b Backend
	switch d.Kind {
	case models.BackendLocal:
		b = NewLocal(d)
	case models.BackendHosted:
		b = NewHosted(d)
	case models.BackendAnthropic:
		b = NewAnthropic(d)
	default:
		return nil, eris.Errorf("backend %s: unknown kind %q", d.Name, d.Kind)
	}
	return WithRateLimit(b, d.RateLimit), nil
}

// Func adapts a function to Backend.
type Func struct {
	ID string
	Fn func(ctx context.Context, p Prompt) (string, error)
}

// Name implements Backend.
func (f Func) Name() string { return f.ID }

// Generate implements Backend.
func (f Func) Generate(ctx context.Context, p Prompt) (string, error) {
	return f.Fn(ctx, p)
}
