// Package session holds the per-user consultation state: the displayed
// advice, the chosen locale and the conversation log.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pario-ai/advisor/pkg/history"
	"github.com/pario-ai/advisor/pkg/models"
)

var (
	// ErrBusy is returned by Begin while a previous submission is in flight.
	ErrBusy = errors.New("session: request already in progress")
	// ErrStale is returned when a result arrives for a superseded generation.
	ErrStale = errors.New("session: result belongs to a previous consultation")
)

// State is the processing state of a consultation.
type State int

const (
	Idle State = iota
	Processing
	Ready
)

func (s State) String() string {
	switch s {
	case Processing:
		return "processing"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// MarshalText renders the state by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "processing":
		*s = Processing
	case "ready":
		*s = Ready
	default:
		return eris.Errorf("session: unknown state %q", text)
	}
	return nil
}

// Ticket identifies the generation a pending result belongs to.
type Ticket struct {
	generation uint64
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID         string                      `json:"id"`
	State      State                       `json:"state"`
	Locale     string                      `json:"locale"`
	Advice     string                      `json:"advice,omitempty"`
	Profile    *models.ProfileRequest      `json:"profile,omitempty"`
	Recent     []models.ConversationRecord `json:"recent"`
	LastActive time.Time                   `json:"last_active"`
}

// Context is one user's consultation. Safe for concurrent use.
type Context struct {
	id      string
	display int
	log     *history.Log
	now     func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	locale     string
	profile    *models.ProfileRequest
	advice     string
	lastActive time.Time
}

// NewContext creates an idle session.
func NewContext(id, locale string, retention, display int) *Context {
	c := &Context{
		id:      id,
		display: display,
		log:     history.New(retention),
		now:     time.Now,
		locale:  locale,
	}
	c.lastActive = c.now()
	return c
}

// ID returns the session id.
func (c *Context) ID() string { return c.id }

// Log returns the conversation log.
func (c *Context) Log() *history.Log { return c.log }

// Locale returns the current locale.
func (c *Context) Locale() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locale
}

// State returns the current state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin moves the session to Processing and returns the ticket its result
// must present.
func (c *Context) Begin() (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Processing {
		return Ticket{}, ErrBusy
	}
	c.state = Processing
	c.lastActive = c.now()
	return Ticket{generation: c.generation}, nil
}

// Ticket returns a ticket for the current generation without changing state.
func (c *Context) Ticket() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = c.now()
	return Ticket{generation: c.generation}
}

// Complete stores the advice for t and moves the session to Ready.
func (c *Context) Complete(t Ticket, profile models.ProfileRequest, advice string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.generation != c.generation {
		return ErrStale
	}
	c.state = Ready
	c.profile = &profile
	c.advice = advice
	c.lastActive = c.now()
	return nil
}

// Fail returns a Processing session to Idle.
func (c *Context) Fail(t Ticket) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.generation != c.generation {
		return ErrStale
	}
	if c.state == Processing {
		c.state = Idle
	}
	return nil
}

// Record appends an answered question to the log unless t is stale.
func (c *Context) Record(t Ticket, question, answer, backend string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.generation != c.generation {
		return ErrStale
	}
	c.log.Append(question, answer, backend)
	c.lastActive = c.now()
	return nil
}

// Reset starts a new consultation. Advice and profile are dropped and
// in-flight results become stale. The conversation log is kept.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = Idle
	c.profile = nil
	c.advice = ""
	c.lastActive = c.now()
}

// ClearHistory drops every conversation record.
func (c *Context) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Reset()
}

// SetLocale switches the locale and reports whether it changed.
func (c *Context) SetLocale(locale string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastActive = c.now()
	if c.locale == locale {
		return false
	}
	c.locale = locale
	return true
}

// Snapshot returns a copy of the displayable state.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ID:         c.id,
		State:      c.state,
		Locale:     c.locale,
		Advice:     c.advice,
		Recent:     c.log.Recent(c.display),
		LastActive: c.lastActive,
	}
	if c.profile != nil {
		p := *c.profile
		s.Profile = &p
	}
	return s
}

// LastActive returns the time of the last interaction.
func (c *Context) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}
