package notify

import (
	"time"

	"event-planner-web/internal/events"
)

// Notification is one entry of a browser's notification bell.
//
// Entries are appended by realtime pushes and only ever removed by the user;
// they are never edited.
type Notification struct {
	ID       string `json:"id"`
	ClientID string `json:"-"`

	Kind    Kind          `json:"kind"`
	Message string        `json:"message"`
	Event   *events.Event `json:"event,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Kind string

const (
	KindReminder Kind = "event_reminder"
	KindUpdated  Kind = "event_updated"
)

// Inbox is the bell's view model. Items are newest first.
type Inbox struct {
	Items  []Notification `json:"notifications"`
	HasNew bool           `json:"has_new"`
}

// reminderPayload is what the backend sends with an event-reminder push.
type reminderPayload struct {
	Message string        `json:"message"`
	Event   *events.Event `json:"event"`
}
