package session

import (
	"context"
	"log/slog"
	"sync"

	"event-planner-web/internal/token"
	"event-planner-web/pkg/logger"
)

// TransitionHook observes state changes of every controller in a Registry.
type TransitionHook func(clientID string, from, to State)

// Registry owns one Controller per client id and routes storage change
// events to them. Construct it at startup and Close it on shutdown.
type Registry struct {
	store     TokenStore
	validator TokenValidator
	log       *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
	hooks       []TransitionHook
	closed      bool

	unsubscribe func()
}

// NewRegistry builds a Registry. signal may be nil, in which case only
// in-process Login/Logout calls move controllers.
func NewRegistry(store TokenStore, validator TokenValidator, signal token.Signal, log *slog.Logger) *Registry {
	r := &Registry{
		store:       store,
		validator:   validator,
		log:         logger.OrDefault(log),
		controllers: map[string]*Controller{},
	}
	if signal != nil {
		r.unsubscribe = signal.Subscribe(r.handleChange)
	}
	return r
}

// OnTransition registers a hook applied to controllers created afterwards and to existing ones.
func (r *Registry) OnTransition(hook TransitionHook) {
	r.mu.Lock()
	r.hooks = append(r.hooks, hook)
	existing := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		existing = append(existing, c)
	}
	r.mu.Unlock()

	for _, c := range existing {
		r.attach(c, hook)
	}
}

// Controller returns the controller for clientID, creating and starting it on first use.
// A concurrent caller may observe StateUnknown while the first storage read is in flight.
// After Close the controller is built from storage but no longer tracked.
func (r *Registry) Controller(ctx context.Context, clientID string) *Controller {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		c := NewController(clientID, r.store, r.validator, r.log)
		c.Start(ctx)
		return c
	}
	if c, ok := r.controllers[clientID]; ok {
		r.mu.Unlock()
		return c
	}
	c := NewController(clientID, r.store, r.validator, r.log)
	r.controllers[clientID] = c
	hooks := make([]TransitionHook, len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.Unlock()

	c.OnChange(func(_, to State) {
		if to == StateAuthenticated {
			r.adopt(c)
		}
	})
	for _, h := range hooks {
		r.attach(c, h)
	}
	c.Start(ctx)
	return c
}

// adopt tracks c again when a sweep evicted it while a request still held it
// and that request then signed the browser in.
func (r *Registry) adopt(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if _, ok := r.controllers[c.ClientID()]; !ok {
		r.controllers[c.ClientID()] = c
	}
}

// Lookup returns an existing controller without creating one.
func (r *Registry) Lookup(clientID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[clientID]
	return c, ok
}

// Len reports the number of tracked controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep rechecks every authenticated controller so expired tokens flip the
// session, then evicts unauthenticated controllers; they are rebuilt from
// storage on next use. It returns how many sessions expired.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	snapshot := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		snapshot = append(snapshot, c)
	}
	r.mu.Unlock()

	expired := 0
	for _, c := range snapshot {
		if c.State() != StateAuthenticated {
			continue
		}
		if c.Recheck(ctx) == StateUnauthenticated {
			expired++
		}
	}

	r.mu.Lock()
	for id, c := range r.controllers {
		if c.State() == StateUnauthenticated {
			delete(r.controllers, id)
		}
	}
	r.mu.Unlock()
	return expired
}

// Close stops listening for storage changes and drops all controllers.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.controllers = map[string]*Controller{}
	unsubscribe := r.unsubscribe
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (r *Registry) attach(c *Controller, hook TransitionHook) {
	id := c.ClientID()
	c.OnChange(func(from, to State) { hook(id, from, to) })
}

func (r *Registry) handleChange(ev token.ChangeEvent) {
	c, ok := r.Lookup(ev.ClientID)
	if !ok {
		return
	}
	c.HandleChange(ev)
}
