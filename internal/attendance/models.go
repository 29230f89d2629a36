package attendance

import (
	"time"

	"event-planner-web/internal/events"
)

// DashboardRequest narrows the dashboard. The zero value shows every event.
type DashboardRequest struct {
	ActiveOnly bool        `form:"active_only" json:"active_only,omitempty"`
	Type       events.Type `form:"type" json:"type,omitempty"`
}

// Card is one event on the attendance dashboard.
type Card struct {
	EventID     int64       `json:"event_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DateTime    time.Time   `json:"date_time"`
	Type        events.Type `json:"type"`
	Active      bool        `json:"active"`

	Accepted int `json:"accepted"`
	Pending  int `json:"pending"`
	Declined int `json:"declined"`
	Invited  int `json:"invited"`

	// ResponseRate is the answered share of invitations, 0 when nobody was invited.
	ResponseRate float64 `json:"response_rate"`
}

type Totals struct {
	Events   int `json:"events"`
	Accepted int `json:"accepted"`
	Pending  int `json:"pending"`
	Declined int `json:"declined"`
	Invited  int `json:"invited"`

	ResponseRate float64 `json:"response_rate"`
}

type Dashboard struct {
	Cards  []Card `json:"cards"`
	Totals Totals `json:"totals"`
}
