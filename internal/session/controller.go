// Package session derives "is this browser signed in" from its stored token.
//
// A Controller is the single source of truth for one client id. It starts in
// StateUnknown, resolves on Start, and afterwards moves only on Login, Logout,
// storage change events and expiry rechecks. Callers only ever see the derived
// state; the raw token stays inside the token package.
package session

import (
	"context"
	"log/slog"
	"sync"

	"event-planner-web/internal/token"
	"event-planner-web/pkg/logger"
)

type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// TokenStore is the part of token.Storage the controller needs.
type TokenStore interface {
	Get(ctx context.Context, clientID string) string
	Clear(ctx context.Context, clientID string)
}

// TokenValidator decides whether a raw token is still usable.
type TokenValidator interface {
	Valid(raw string) bool
}

// Observer is called after every state change, outside the controller lock.
type Observer func(from, to State)

type Controller struct {
	clientID  string
	store     TokenStore
	validator TokenValidator
	log       *slog.Logger

	mu        sync.Mutex
	state     State
	nextID    uint64
	observers []observerEntry
}

type observerEntry struct {
	id uint64
	fn Observer
}

func NewController(clientID string, store TokenStore, validator TokenValidator, log *slog.Logger) *Controller {
	return &Controller{
		clientID:  clientID,
		store:     store,
		validator: validator,
		log:       logger.OrDefault(log).With("client_id", clientID),
	}
}

func (c *Controller) ClientID() string { return c.clientID }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsAuthenticated() bool { return c.State() == StateAuthenticated }

// Start performs the first storage read. It is a no-op once the state is known.
func (c *Controller) Start(ctx context.Context) State {
	if s := c.State(); s != StateUnknown {
		return s
	}
	return c.Recheck(ctx)
}

// Login re-reads storage after the auth API has written a token and reports
// whether the session is now authenticated. It makes no network call.
func (c *Controller) Login(ctx context.Context) bool {
	return c.Recheck(ctx) == StateAuthenticated
}

// Logout clears the stored token, then flips to unauthenticated.
func (c *Controller) Logout(ctx context.Context) {
	c.store.Clear(ctx, c.clientID)
	c.transition(StateUnauthenticated)
}

// Recheck derives the state from storage: authenticated iff a token is
// present and valid. A failed read looks like an absent token.
func (c *Controller) Recheck(ctx context.Context) State {
	next := StateUnauthenticated
	if raw := c.store.Get(ctx, c.clientID); raw != "" && c.validator.Valid(raw) {
		next = StateAuthenticated
	}
	c.transition(next)
	return next
}

// HandleChange applies a storage change announced by another context.
func (c *Controller) HandleChange(ev token.ChangeEvent) {
	if ev.ClientID != c.clientID || ev.Key != token.Key {
		return
	}
	if ev.Removed() || !c.validator.Valid(ev.NewValue) {
		c.transition(StateUnauthenticated)
		return
	}
	c.transition(StateAuthenticated)
}

// OnChange registers fn for state changes and returns its unsubscribe func.
func (c *Controller) OnChange(fn Observer) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observerEntry{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, o := range c.observers {
				if o.id == id {
					c.observers = append(c.observers[:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Controller) transition(to State) {
	c.mu.Lock()
	from := c.state
	if from == to {
		c.mu.Unlock()
		return
	}
	c.state = to
	observers := make([]observerEntry, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	c.log.Debug("session state changed", "from", from.String(), "to", to.String())
	for _, o := range observers {
		o.fn(from, to)
	}
}
