package token

import (
	"context"
	"testing"
	"time"

	"event-planner-web/pkg/logger"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisBackendLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)

	b, err := NewRedisBackend(rdb, "")
	if err != nil {
		t.Fatalf("NewRedisBackend: %v", err)
	}

	if _, err := b.Load(ctx, "c1", Key); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := b.Save(ctx, "c1", Key, "tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v, _ := mr.Get("eventplanner:client:c1:authToken"); v != "tok" {
		t.Fatalf("unexpected raw value %q", v)
	}
	v, err := b.Load(ctx, "c1", Key)
	if err != nil || v != "tok" {
		t.Fatalf("Load = %q, %v", v, err)
	}
	if err := b.Delete(ctx, "c1", Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := b.Delete(ctx, "c1", Key); err != nil {
		t.Fatalf("Delete of absent key: %v", err)
	}
}

func TestRedisSignal_DeliversAcrossInstances(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)

	// Two signals on the same channel stand in for two BFF replicas.
	a, err := NewRedisSignal(ctx, rdb, "", logger.Discard())
	if err != nil {
		t.Fatalf("signal a: %v", err)
	}
	defer a.Close()
	b, err := NewRedisSignal(ctx, rdb, "", logger.Discard())
	if err != nil {
		t.Fatalf("signal b: %v", err)
	}
	defer b.Close()

	got := make(chan ChangeEvent, 1)
	b.Subscribe(func(ev ChangeEvent) { got <- ev })

	backend, _ := NewRedisBackend(rdb, "")
	storage := NewStorage(backend, a, logger.Discard())
	storage.Set(ctx, "c1", "tok")
	storage.Clear(ctx, "c1")

	for _, wantRemoved := range []bool{false, true} {
		select {
		case ev := <-got:
			if ev.ClientID != "c1" || ev.Removed() != wantRemoved {
				t.Fatalf("unexpected event %+v", ev)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for storage event")
		}
	}
}

func TestNewRedisBackend_RejectsNil(t *testing.T) {
	if _, err := NewRedisBackend(nil, ""); err == nil {
		t.Fatalf("expected error")
	}
}
