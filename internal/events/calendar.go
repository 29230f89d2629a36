package events

import (
	"sort"
	"strconv"
	"time"
)

// DefaultDuration is the length given to every event on the calendar;
// the API only stores a start time.
const DefaultDuration = 5 * time.Hour

// CalendarEntry is the shape the calendar view renders.
type CalendarEntry struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	ResourceID    string    `json:"resourceId"`
	ExtendedProps Props     `json:"extendedProps"`
}

type Props struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	Type        Type   `json:"type"`
	Active      bool   `json:"active"`
}

// Resource is one calendar row (one per event type).
type Resource struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func Resources() []Resource {
	out := make([]Resource, 0, len(Types))
	for _, t := range Types {
		out = append(out, Resource{ID: string(t), Title: string(t)})
	}
	return out
}

func ToCalendarEntry(e Event) CalendarEntry {
	start := e.DateTime.UTC()
	return CalendarEntry{
		ID:         strconv.FormatInt(e.ID, 10),
		Title:      e.Title,
		Start:      start,
		End:        start.Add(DefaultDuration),
		ResourceID: string(e.Type),
		ExtendedProps: Props{
			Description: e.Description,
			Location:    e.Location,
			Type:        e.Type,
			Active:      e.Active,
		},
	}
}

// ToCalendar converts events, silently dropping incomplete ones.
func ToCalendar(evs []Event) []CalendarEntry {
	out := make([]CalendarEntry, 0, len(evs))
	for _, e := range evs {
		if !e.Complete() {
			continue
		}
		out = append(out, ToCalendarEntry(e))
	}
	return out
}

// NextUpcoming returns the earliest active entry starting strictly after now.
func NextUpcoming(entries []CalendarEntry, now time.Time) (CalendarEntry, bool) {
	var (
		best  CalendarEntry
		found bool
	)
	for _, e := range entries {
		if !e.ExtendedProps.Active || !e.Start.After(now) {
			continue
		}
		if !found || e.Start.Before(best.Start) {
			best, found = e, true
		}
	}
	return best, found
}

// Overview is the events overview page model.
type Overview struct {
	Total     int             `json:"total"`
	Active    int             `json:"active"`
	Next      *CalendarEntry  `json:"next,omitempty"`
	Events    []CalendarEntry `json:"events"`
	Resources []Resource      `json:"resources"`
	Types     []Type          `json:"types"`
}

func BuildOverview(evs []Event, now time.Time) Overview {
	entries := ToCalendar(evs)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	ov := Overview{
		Total:     len(entries),
		Events:    entries,
		Resources: Resources(),
		Types:     Types,
	}
	for _, e := range entries {
		if e.ExtendedProps.Active {
			ov.Active++
		}
	}
	if next, ok := NextUpcoming(entries, now); ok {
		ov.Next = &next
	}
	return ov
}
