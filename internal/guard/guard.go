// Package guard protects page routes by re-validating the stored token on every request.
//
// It deliberately does not consult the session registry: a page stays guarded
// even when the session state has not been recomputed yet.
package guard

import (
	"context"
	"net/http"

	"event-planner-web/internal/clientid"
	"event-planner-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

type TokenStore interface {
	Get(ctx context.Context, clientID string) string
	Clear(ctx context.Context, clientID string)
}

type TokenValidator interface {
	Valid(raw string) bool
}

// Require lets the request through only when the caller holds a valid token.
// Otherwise the stale token is cleared and the caller is redirected to landing;
// the protected handler never runs.
func Require(store TokenStore, validator TokenValidator, landing string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := clientid.From(ctx)
		if err != nil {
			c.Redirect(http.StatusFound, landing)
			c.Abort()
			return
		}

		raw := store.Get(ctx, id)
		if validator.Valid(raw) {
			c.Next()
			return
		}

		if raw != "" {
			store.Clear(ctx, id)
			logger.FromGin(c).Info("stale token cleared by route guard", "client_id", id, "path", c.Request.URL.Path)
		}
		c.Redirect(http.StatusFound, landing)
		c.Abort()
	}
}
