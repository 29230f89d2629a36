package events

import (
	"net/url"
	"time"
)

// Event is an event as returned by the events API.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	Location    string    `json:"location"`
	Type        Type      `json:"type"`
	Active      bool      `json:"active"`
	CreatorID   int64     `json:"creator_id,omitempty"`
}

// Complete reports whether every field the calendar needs is present.
func (e Event) Complete() bool {
	return e.ID != 0 &&
		e.Title != "" &&
		!e.DateTime.IsZero() &&
		e.Description != "" &&
		e.Location != "" &&
		e.Type != ""
}

type Type string

const (
	TypeMeeting     Type = "Meeting"
	TypeWorkshop    Type = "Workshop"
	TypeConference  Type = "Conference"
	TypeWebinar     Type = "Webinar"
	TypeSocialEvent Type = "Social Event"
)

// Types lists the event types in display order.
var Types = []Type{TypeMeeting, TypeWorkshop, TypeConference, TypeWebinar, TypeSocialEvent}

func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Draft is the writable part of an event, used for create and update.
type Draft struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	DateTime    time.Time `json:"date_time" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	Type        Type      `json:"type" binding:"required"`
}

// Stats is one attendance dashboard row. JSON names follow the backend,
// including its spelling of "acepted".
type Stats struct {
	Event    Event `json:"event"`
	Accepted int   `json:"aceptedInvitationsNum"`
	Declined int   `json:"declinedInvitationsNum"`
	Pending  int   `json:"pendingInvitationsNum"`
}

// Filters narrows the events list. Empty fields are not sent.
type Filters struct {
	Date   string `form:"date" json:"date,omitempty"`
	Active string `form:"active" json:"active,omitempty"`
	Type   string `form:"type" json:"type,omitempty"`
	Search string `form:"search" json:"search,omitempty"`
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool { return f == Filters{} }

func (f Filters) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("date", f.Date)
	set("active", f.Active)
	set("type", f.Type)
	set("search", f.Search)
	return q
}

// InvitationStatus values accepted by the invitations API.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation links a user to an event.
type Invitation struct {
	UserID  int64            `json:"user_id" binding:"required"`
	EventID int64            `json:"event_id"`
	Status  InvitationStatus `json:"status"`
}

// User is a user as returned by the users API.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}
