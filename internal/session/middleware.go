package session

import (
	"net/http"

	"event-planner-web/internal/clientid"

	"github.com/gin-gonic/gin"
)

const ginKey = "session"

// LandingRoute is where unauthenticated browsers are sent.
const LandingRoute = "/"

// Provide resolves the caller's controller and stores it on the gin context.
// While the controller is still Unknown the request is answered with a
// neutral loading response instead of being treated as signed out.
func Provide(r *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := clientid.From(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "client id required"})
			return
		}

		ctrl := r.Controller(c.Request.Context(), id)
		if ctrl.State() == StateUnknown {
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": "loading"})
			return
		}

		c.Set(ginKey, ctrl)
		c.Next()
	}
}

// From returns the controller stored by Provide.
func From(c *gin.Context) (*Controller, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return nil, false
	}
	ctrl, ok := v.(*Controller)
	return ctrl, ok && ctrl != nil
}

// RequireAuthenticated rejects requests whose session is not authenticated.
// Use it after Provide.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctrl, ok := From(c)
		if !ok || !ctrl.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "redirect": LandingRoute})
			return
		}
		c.Next()
	}
}
