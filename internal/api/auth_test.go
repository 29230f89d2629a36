package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"event-planner-web/internal/clientid"

	"github.com/gin-gonic/gin"
)

func TestLogin_StoresToken(t *testing.T) {
	r := newRouter()
	r.POST("/api/auth/login", func(c *gin.Context) {
		var creds Credentials
		if err := c.ShouldBindJSON(&creds); err != nil || creds.Password != "secret123" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": "fresh"})
	})
	c, store, ctx := newTestClient(t, r)

	if err := c.Login(ctx, Credentials{Email: "a@b.c", Password: "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := store.Get(ctx, testClient); got != "fresh" {
		t.Fatalf("expected stored token, got %q", got)
	}

	err := c.Login(ctx, Credentials{Email: "a@b.c", Password: "nope"})
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLogin_RequiresClientID(t *testing.T) {
	c, _, _ := newTestClient(t, newRouter())
	if err := c.Login(context.Background(), Credentials{}); !errors.Is(err, clientid.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestLogin_EmptyTokenRejected(t *testing.T) {
	r := newRouter()
	r.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	c, store, ctx := newTestClient(t, r)

	if err := c.Login(ctx, Credentials{Email: "a@b.c", Password: "x"}); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if store.Get(ctx, testClient) != "" {
		t.Fatalf("no token should be stored")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	var requested map[string]string
	var reset NewPassword
	r := newRouter()
	r.POST("/api/auth/request-password-reset", func(c *gin.Context) {
		_ = c.ShouldBindJSON(&requested)
		c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent."})
	})
	r.POST("/api/auth/reset-password", func(c *gin.Context) {
		_ = c.ShouldBindJSON(&reset)
		if reset.Token != "good" {
			c.JSON(http.StatusBadRequest, gin.H{})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated."})
	})
	c, _, ctx := newTestClient(t, r)

	msg, err := c.RequestPasswordReset(ctx, "a@b.c")
	if err != nil || msg != "Password reset link sent." {
		t.Fatalf("reset request: msg=%q err=%v", msg, err)
	}
	if requested["email"] != "a@b.c" {
		t.Fatalf("unexpected reset request body %v", requested)
	}

	msg, err = c.ResetPassword(ctx, NewPassword{Token: "good", NewPassword: "longenough"})
	if err != nil || msg != "Password updated." || reset.NewPassword != "longenough" {
		t.Fatalf("reset: msg=%q err=%v body=%+v", msg, err, reset)
	}
	if _, err := c.ResetPassword(ctx, NewPassword{Token: "t", NewPassword: "longenough"}); err == nil ||
		err.Error() != "An error occurred while setting new password." {
		t.Fatalf("unexpected error %v", err)
	}
}
