// Package clientid identifies browsers. Every browser gets a long-lived
// client_id cookie; all of its tabs share it, so it stands in for the
// browser's local storage partition.
package clientid

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "client_id"

	// GinKey is where the id is stored on the gin context.
	GinKey = "client_id"

	cookieMaxAge = 365 * 24 * time.Hour
)

var ErrMissing = errors.New("client_id not in context")

type ctxKey struct{}

func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func From(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxKey{}).(string); ok && s != "" {
		return s, nil
	}
	return "", ErrMissing
}

// Middleware assigns or reuses the client_id cookie and injects it into the request context.
// Malformed cookie values are replaced rather than trusted.
func Middleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Request = c.Request.WithContext(With(c.Request.Context(), id))
		c.Set(GinKey, id)
		c.Next()
	}
}
