package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, repo
}

func TestService_AppendRequiresClientKindAndMessage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, n := range []Notification{
		{Kind: KindReminder, Message: "m"},
		{ClientID: "c", Message: "m"},
		{ClientID: "c", Kind: KindReminder},
	} {
		if err := svc.Append(ctx, n); !errors.Is(err, ErrInvalidNotification) {
			t.Fatalf("expected ErrInvalidNotification for %+v, got %v", n, err)
		}
	}
}

func TestService_RecordUpdateFormatsMessage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	n, err := svc.RecordUpdate(ctx, "c", json.RawMessage(`{"id":4,"title":"Team Offsite"}`))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if n.Message != `Event "Team Offsite" has been updated.` {
		t.Fatalf("unexpected message %q", n.Message)
	}
	if n.Event == nil || n.Event.ID != 4 || n.ID == "" {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestService_RecordReminder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	n, err := svc.RecordReminder(ctx, "c", json.RawMessage(`{"message":"Expo starts in 1 hour","event":{"id":1,"title":"Expo"}}`))
	if err != nil || n.Message != "Expo starts in 1 hour" || n.Kind != KindReminder {
		t.Fatalf("unexpected %+v %v", n, err)
	}

	n, err = svc.RecordReminder(ctx, "c", json.RawMessage(`{"event":{"id":1,"title":"Expo"}}`))
	if err != nil || n.Message != `Reminder: event "Expo" is coming up.` {
		t.Fatalf("unexpected fallback %+v %v", n, err)
	}

	if _, err := svc.RecordReminder(ctx, "c", json.RawMessage(`{}`)); !errors.Is(err, ErrInvalidNotification) {
		t.Fatalf("expected invalid reminder, got %v", err)
	}
	if _, err := svc.RecordReminder(ctx, "c", json.RawMessage(`nope`)); !errors.Is(err, ErrInvalidNotification) {
		t.Fatalf("expected invalid reminder, got %v", err)
	}
}

func TestService_InboxNewestFirstAndSeenFlag(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	empty, err := svc.Inbox(ctx, "c")
	if err != nil || empty.HasNew || empty.Items == nil || len(empty.Items) != 0 {
		t.Fatalf("unexpected empty inbox %+v %v", empty, err)
	}

	first, _ := svc.RecordUpdate(ctx, "c", json.RawMessage(`{"title":"A"}`))
	second, _ := svc.RecordUpdate(ctx, "c", json.RawMessage(`{"title":"B"}`))
	_, _ = svc.RecordUpdate(ctx, "other", json.RawMessage(`{"title":"X"}`))

	in, err := svc.Inbox(ctx, "c")
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(in.Items) != 2 || in.Items[0].ID != second.ID || in.Items[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", in.Items)
	}
	if !in.HasNew {
		t.Fatalf("expected has_new after pushes")
	}

	if err := svc.MarkSeen(ctx, "c"); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	in, _ = svc.Inbox(ctx, "c")
	if in.HasNew || len(in.Items) != 2 {
		t.Fatalf("mark seen must keep entries and reset flag: %+v", in)
	}
}

func TestService_RemoveSelectedAndClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.RecordUpdate(ctx, "c", json.RawMessage(`{"title":"A"}`))
	b, _ := svc.RecordUpdate(ctx, "c", json.RawMessage(`{"title":"B"}`))
	c, _ := svc.RecordUpdate(ctx, "c", json.RawMessage(`{"title":"C"}`))

	if n, err := svc.Remove(ctx, "c", nil); err != nil || n != 0 {
		t.Fatalf("empty selection removed %d (%v)", n, err)
	}
	n, err := svc.Remove(ctx, "c", []string{a.ID, c.ID, "missing"})
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got %d (%v)", n, err)
	}
	in, _ := svc.Inbox(ctx, "c")
	if len(in.Items) != 1 || in.Items[0].ID != b.ID {
		t.Fatalf("unexpected remaining %+v", in.Items)
	}

	if err := svc.Clear(ctx, "c"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	in, _ = svc.Inbox(ctx, "c")
	if len(in.Items) != 0 || in.HasNew {
		t.Fatalf("expected empty inbox after clear")
	}
}
