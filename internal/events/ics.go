package events

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//event-planner-web//calendar export//EN"

// ICS renders calendar entries as an iCalendar document. Inactive entries are
// exported with STATUS:CANCELLED so subscribed calendars drop them.
func ICS(entries []CalendarEntry, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, e := range entries {
		ev := cal.AddEvent(e.ID + "@event-planner")
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(e.Start)
		ev.SetEndAt(e.End)
		ev.SetSummary(e.Title)
		if e.ExtendedProps.Description != "" {
			ev.SetDescription(e.ExtendedProps.Description)
		}
		if e.ExtendedProps.Location != "" {
			ev.SetLocation(e.ExtendedProps.Location)
		}
		if e.ExtendedProps.Type != "" {
			ev.SetProperty(ical.ComponentPropertyCategories, string(e.ExtendedProps.Type))
		}
		if e.ExtendedProps.Active {
			ev.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
		} else {
			ev.SetProperty(ical.ComponentPropertyStatus, "CANCELLED")
		}
	}
	return cal.Serialize()
}
