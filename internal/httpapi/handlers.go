package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"event-planner-web/internal/api"
	"event-planner-web/internal/attendance"
	"event-planner-web/internal/clientid"
	"event-planner-web/internal/events"
	"event-planner-web/internal/notify"
	"event-planner-web/internal/realtime"
	"event-planner-web/internal/session"
	"event-planner-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Backend is the part of the REST backend the pages use. *api.Client implements it.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) error
	Register(ctx context.Context, reg api.Registration) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, np api.NewPassword) (string, error)

	ListEvents(ctx context.Context) ([]events.Event, error)
	FilterEvents(ctx context.Context, f events.Filters) ([]events.Event, error)
	GetEvent(ctx context.Context, id int64) (events.Event, error)
	CreateEvent(ctx context.Context, d events.Draft) (events.Event, error)
	UpdateEvent(ctx context.Context, id int64, d events.Draft) (events.Event, error)
	CancelEvent(ctx context.Context, id int64) error

	ListUsers(ctx context.Context) ([]events.User, error)
	GetUser(ctx context.Context, id int64) (events.User, error)
	SendInvitation(ctx context.Context, inv events.Invitation) error
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Backend    Backend
	Attendance *attendance.Service
	Notify     *notify.Service
	Feed       *notify.Feed
	Hub        *realtime.Hub

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// HomeRoute is where a signed-in browser lands.
const HomeRoute = "/events-overview"

func (h Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Landing sends signed-in browsers home and everyone else to the sign-in options.
func (h Handlers) Landing(c *gin.Context) {
	if ctrl, ok := session.From(c); ok && ctrl.IsAuthenticated() {
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "redirect": HomeRoute})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": false,
		"links":         gin.H{"login": "/login", "register": "/register", "reset_password": "/reset-password"},
	})
}

func (h Handlers) Session(c *gin.Context) {
	ctrl, ok := session.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ctrl.State().String(), "authenticated": ctrl.IsAuthenticated()})
}

// backendError maps a failed backend call onto the response.
// A backend 401 has already cleared the token; the browser is sent to the landing route.
func backendError(c *gin.Context, err error) {
	status := api.StatusOr(err, http.StatusBadGateway)
	body := gin.H{"error": err.Error()}
	if errors.Is(err, api.ErrUnauthorized) {
		body["redirect"] = session.LandingRoute
	}
	if status >= http.StatusInternalServerError {
		logger.FromGin(c).Warn("backend call failed", "status", status, "err", err)
	}
	c.AbortWithStatusJSON(status, body)
}

func bindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
}

func eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, false
	}
	return id, true
}

func clientID(c *gin.Context) (string, bool) {
	id, err := clientid.From(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "client id required"})
		return "", false
	}
	return id, true
}
