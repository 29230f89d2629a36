package events

import (
	"strings"
	"testing"
	"time"
)

func sampleEvent(id int64, at time.Time, active bool) Event {
	return Event{
		ID:          id,
		Title:       "Standup",
		Description: "daily sync",
		DateTime:    at,
		Location:    "Room 1",
		Type:        TypeMeeting,
		Active:      active,
	}
}

func TestToCalendar_DropsIncompleteEvents(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	missingLocation := sampleEvent(2, at, true)
	missingLocation.Location = ""

	got := ToCalendar([]Event{sampleEvent(1, at, true), missingLocation, {}})
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	e := got[0]
	if e.ID != "1" || e.ResourceID != string(TypeMeeting) {
		t.Fatalf("unexpected entry %+v", e)
	}
	if !e.End.Equal(at.Add(5 * time.Hour)) {
		t.Fatalf("expected 5h duration, end=%s", e.End)
	}
}

func TestNextUpcoming_StrictlyAfterNowAndActive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := ToCalendar([]Event{
		sampleEvent(1, now, true),                   // not strictly after
		sampleEvent(2, now.Add(2*time.Hour), false), // inactive
		sampleEvent(3, now.Add(48*time.Hour), true),
		sampleEvent(4, now.Add(3*time.Hour), true),
		sampleEvent(5, now.Add(-time.Hour), true),
	})

	next, ok := NextUpcoming(entries, now)
	if !ok {
		t.Fatalf("expected an upcoming entry")
	}
	if next.ID != "4" {
		t.Fatalf("expected event 4, got %s", next.ID)
	}

	if _, ok := NextUpcoming(entries, now.Add(72*time.Hour)); ok {
		t.Fatalf("expected nothing upcoming")
	}
}

func TestBuildOverview(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ov := BuildOverview([]Event{
		sampleEvent(1, now.Add(24*time.Hour), true),
		sampleEvent(2, now.Add(-24*time.Hour), false),
		{ID: 3},
	}, now)

	if ov.Total != 2 || ov.Active != 1 {
		t.Fatalf("unexpected counts total=%d active=%d", ov.Total, ov.Active)
	}
	if ov.Next == nil || ov.Next.ID != "1" {
		t.Fatalf("unexpected next %+v", ov.Next)
	}
	if ov.Events[0].ID != "2" {
		t.Fatalf("expected entries sorted by start")
	}
	if len(ov.Resources) != len(Types) {
		t.Fatalf("expected one resource per type")
	}
}

func TestICS_MarksCancelledAndCategories(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cancelled := sampleEvent(2, at, false)
	cancelled.Type = TypeWebinar

	out := ICS(ToCalendar([]Event{sampleEvent(1, at, true), cancelled}), at)

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:1@event-planner",
		"UID:2@event-planner",
		"SUMMARY:Standup",
		"CATEGORIES:Webinar",
		"STATUS:CANCELLED",
		"STATUS:CONFIRMED",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("ics output missing %q:\n%s", want, out)
		}
	}
}
