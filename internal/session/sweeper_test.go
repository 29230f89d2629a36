package session

import (
	"context"
	"testing"
	"time"

	"event-planner-web/pkg/logger"
)

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	f := newFixture()
	r := NewRegistry(f.storage, f.validator, f.signal, logger.Discard())
	defer r.Close()

	if _, err := NewSweeper(r, "every minute", logger.Discard()); err == nil {
		t.Fatalf("expected schedule error")
	}
}

func TestSweeper_ExpiresSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	r := NewRegistry(f.storage, f.validator, f.signal, logger.Discard())
	defer r.Close()

	f.storage.Set(ctx, "c1", mint(t, testNow.Add(time.Minute)))
	c := r.Controller(ctx, "c1")
	if !c.IsAuthenticated() {
		t.Fatalf("expected authenticated")
	}

	s, err := NewSweeper(r, "@every 1h", logger.Discard())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.Start()
	defer s.Stop(ctx)

	s.run()
	if !c.IsAuthenticated() {
		t.Fatalf("unexpired session must survive a sweep")
	}

	f.now = testNow.Add(2 * time.Minute)
	s.run()
	if c.State() != StateUnauthenticated {
		t.Fatalf("expected expired session to flip, got %v", c.State())
	}
	if _, ok := r.Lookup("c1"); ok {
		t.Fatalf("expected unauthenticated controller to be evicted")
	}
}
