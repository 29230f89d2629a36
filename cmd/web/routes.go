package main

import (
	"event-planner-web/internal/clientid"
	"event-planner-web/internal/guard"
	"event-planner-web/internal/session"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, a *app) {
	h := a.handlers

	r.GET("/healthz", h.Health)

	// Every page knows its browser and session.
	pages := r.Group("/")
	pages.Use(clientid.Middleware(a.cfg.App.CookieSecure))
	pages.Use(session.Provide(a.registry))
	{
		pages.GET("/", h.Landing)
		pages.GET("/session", h.Session)
		pages.POST("/login", h.Login)
		pages.POST("/logout", h.Logout)
		pages.POST("/register", h.Register)
		pages.POST("/reset-password", h.RequestPasswordReset)
		pages.POST("/set-new-password", h.SetNewPassword)
	}

	protected := pages.Group("/")
	protected.Use(guard.Require(a.storage, a.validator, session.LandingRoute))
	{
		protected.GET("/events-overview", h.EventsOverview)
		protected.GET("/events-overview/calendar.ics", h.CalendarICS)
		protected.POST("/events", h.CreateEvent)

		protected.GET("/event-details/:id", h.EventDetails)
		protected.PUT("/event-details/:id", h.UpdateEvent)
		protected.POST("/event-details/:id/cancel", h.CancelEvent)
		protected.POST("/event-details/:id/invitations", h.InviteUser)

		protected.GET("/users", h.Users)
		protected.GET("/attendance-dashboard", h.AttendanceDashboard)

		protected.GET("/notifications", h.Notifications)
		protected.POST("/notifications/seen", h.MarkNotificationsSeen)
		protected.DELETE("/notifications", h.DeleteNotifications)
	}

	// Views watch the session, so it must already be authenticated.
	views := protected.Group("/ws")
	views.Use(session.RequireAuthenticated())
	{
		views.GET("/events-overview", h.EventsOverviewSocket)
		views.GET("/notifications", h.NotificationsSocket)
	}
}
