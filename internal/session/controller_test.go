package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-planner-web/internal/token"
	"event-planner-web/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

var testNow = time.Unix(1700000000, 0)

func mint(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

type fixture struct {
	backend   *token.MemoryBackend
	signal    *token.LocalSignal
	storage   *token.Storage
	validator *token.Validator
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		backend: token.NewMemoryBackend(),
		signal:  token.NewLocalSignal(),
		now:     testNow,
	}
	f.storage = token.NewStorage(f.backend, f.signal, logger.Discard())
	f.validator = token.NewValidator(func() time.Time { return f.now })
	return f
}

func (f *fixture) controller(id string) *Controller {
	return NewController(id, f.storage, f.validator, logger.Discard())
}

func TestController_StartsUnknown(t *testing.T) {
	f := newFixture()
	c := f.controller("c1")
	if c.State() != StateUnknown {
		t.Fatalf("expected unknown before start, got %v", c.State())
	}
}

func TestController_StartResolvesFromStorage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if got := f.controller("c1").Start(ctx); got != StateUnauthenticated {
		t.Fatalf("expected unauthenticated without token, got %v", got)
	}

	f.storage.Set(ctx, "c2", mint(t, testNow.Add(time.Hour)))
	if got := f.controller("c2").Start(ctx); got != StateAuthenticated {
		t.Fatalf("expected authenticated with valid token, got %v", got)
	}

	f.storage.Set(ctx, "c3", mint(t, testNow.Add(-time.Second)))
	if got := f.controller("c3").Start(ctx); got != StateUnauthenticated {
		t.Fatalf("expected unauthenticated with expired token, got %v", got)
	}
}

func TestController_StorageFailureIsUnauthenticated(t *testing.T) {
	f := newFixture()
	f.backend.FailWith = errors.New("unavailable")
	if got := f.controller("c1").Start(context.Background()); got != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
}

func TestController_LoginUsesStoredTokenWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := f.controller("c1")
	c.Start(ctx)

	// Written by an earlier API call; nothing routes the change event to c.
	f.storage.Set(ctx, "c1", mint(t, testNow.Add(time.Hour)))

	if !c.Login(ctx) {
		t.Fatalf("expected login to succeed")
	}
	if c.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", c.State())
	}
}

func TestController_LoginRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.storage.Set(ctx, "c1", mint(t, testNow.Add(-time.Minute)))

	c := f.controller("c1")
	if c.Login(ctx) {
		t.Fatalf("expected login to fail for expired token")
	}
}

func TestController_LogoutClearsAndFlips(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.storage.Set(ctx, "c1", mint(t, testNow.Add(time.Hour)))
	c := f.controller("c1")
	c.Start(ctx)

	var transitions []State
	c.OnChange(func(_, to State) { transitions = append(transitions, to) })

	c.Logout(ctx)
	if c.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", c.State())
	}
	if f.storage.Get(ctx, "c1") != "" {
		t.Fatalf("expected token cleared")
	}
	if len(transitions) != 1 || transitions[0] != StateUnauthenticated {
		t.Fatalf("expected exactly one transition, got %v", transitions)
	}
}

func TestController_HandleChange(t *testing.T) {
	f := newFixture()
	c := f.controller("c1")

	c.HandleChange(token.ChangeEvent{ClientID: "c1", Key: token.Key, NewValue: mint(t, testNow.Add(time.Hour))})
	if c.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", c.State())
	}

	c.HandleChange(token.ChangeEvent{ClientID: "other", Key: token.Key})
	c.HandleChange(token.ChangeEvent{ClientID: "c1", Key: "theme"})
	if c.State() != StateAuthenticated {
		t.Fatalf("expected unrelated events ignored, got %v", c.State())
	}

	c.HandleChange(token.ChangeEvent{ClientID: "c1", Key: token.Key})
	if c.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated after removal, got %v", c.State())
	}

	c.HandleChange(token.ChangeEvent{ClientID: "c1", Key: token.Key, NewValue: "garbage"})
	if c.State() != StateUnauthenticated {
		t.Fatalf("expected invalid token to keep session closed, got %v", c.State())
	}
}

func TestController_OnChangeUnsubscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := f.controller("c1")

	calls := 0
	off := c.OnChange(func(_, _ State) { calls++ })
	c.Start(ctx)
	off()
	off()
	f.storage.Set(ctx, "c1", mint(t, testNow.Add(time.Hour)))
	c.Login(ctx)

	if calls != 1 {
		t.Fatalf("expected 1 call before unsubscribe, got %d", calls)
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{
		StateUnknown:         "unknown",
		StateAuthenticated:   "authenticated",
		StateUnauthenticated: "unauthenticated",
	} {
		if s.String() != want {
			t.Fatalf("%d: expected %q, got %q", s, want, s.String())
		}
	}
}
