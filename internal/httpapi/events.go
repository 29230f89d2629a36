package httpapi

import (
	"net/http"

	"event-planner-web/internal/events"
	"event-planner-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h Handlers) fetchCalendar(c *gin.Context) ([]events.Event, bool) {
	var f events.Filters
	if err := c.ShouldBindQuery(&f); err != nil {
		bindError(c, err)
		return nil, false
	}
	var (
		evs []events.Event
		err error
	)
	if f.Empty() {
		evs, err = h.Backend.ListEvents(c.Request.Context())
	} else {
		evs, err = h.Backend.FilterEvents(c.Request.Context(), f)
	}
	if err != nil {
		backendError(c, err)
		return nil, false
	}
	return evs, true
}

// EventsOverview renders the calendar page model for the current filters.
func (h Handlers) EventsOverview(c *gin.Context) {
	evs, ok := h.fetchCalendar(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, events.BuildOverview(evs, h.now()))
}

// CalendarICS exports the same events as an iCalendar feed.
func (h Handlers) CalendarICS(c *gin.Context) {
	evs, ok := h.fetchCalendar(c)
	if !ok {
		return
	}
	body := events.ICS(events.ToCalendar(evs), h.now())
	c.Header("Content-Disposition", `attachment; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func bindDraft(c *gin.Context) (events.Draft, bool) {
	var d events.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		bindError(c, err)
		return d, false
	}
	if !d.Type.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid event type", "types": events.Types})
		return d, false
	}
	return d, true
}

func (h Handlers) CreateEvent(c *gin.Context) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	ev, err := h.Backend.CreateEvent(c.Request.Context(), d)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": ev, "entry": events.ToCalendarEntry(ev)})
}

// EventDetails returns the event and, when known, its creator.
// A failed creator lookup does not hide the event.
func (h Handlers) EventDetails(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ev, err := h.Backend.GetEvent(ctx, id)
	if err != nil {
		backendError(c, err)
		return
	}

	resp := gin.H{"event": ev}
	if ev.CreatorID != 0 {
		u, err := h.Backend.GetUser(ctx, ev.CreatorID)
		if err != nil {
			logger.FromGin(c).Warn("event creator lookup failed", "event_id", id, "creator_id", ev.CreatorID, "err", err)
		} else {
			resp["creator"] = u
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h Handlers) UpdateEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	ev, err := h.Backend.UpdateEvent(c.Request.Context(), id, d)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": ev})
}

func (h Handlers) CancelEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	if err := h.Backend.CancelEvent(c.Request.Context(), id); err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": id, "active": false})
}

type inviteRequest struct {
	UserID int64 `json:"user_id" binding:"required,gt=0"`
}

func (h Handlers) InviteUser(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	inv := events.Invitation{UserID: req.UserID, EventID: id, Status: events.InvitationPending}
	if err := h.Backend.SendInvitation(c.Request.Context(), inv); err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation": inv})
}

func (h Handlers) Users(c *gin.Context) {
	users, err := h.Backend.ListUsers(c.Request.Context())
	if err != nil {
		backendError(c, err)
		return
	}
	if users == nil {
		users = []events.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
