package httpapi

import (
	"net/http"

	"event-planner-web/internal/api"
	"event-planner-web/internal/session"
	"event-planner-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	msgLoginFailed   = "Login failed, please try again."
	msgResetSent     = "If this email is associated with an account, a password reset link will be sent shortly."
	msgResetFailed   = "An error occurred while requesting a password reset. Please try again."
	msgPasswordSet   = "Your password has been reset successfully."
	msgMissingToken  = "Invalid or missing token."
	msgPasswordError = "An error occurred while setting your password. Please try again."
)

// Login stores the backend token and flips the session from storage, so every
// tab of the browser becomes authenticated.
func (h Handlers) Login(c *gin.Context) {
	var req api.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.Backend.Login(ctx, req); err != nil {
		backendError(c, err)
		return
	}

	ctrl, ok := session.From(c)
	if !ok || !ctrl.Login(ctx) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgLoginFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "redirect": HomeRoute})
}

// Logout only removes the stored token; the backend keeps no session to end.
func (h Handlers) Logout(c *gin.Context) {
	if ctrl, ok := session.From(c); ok {
		ctrl.Logout(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false, "redirect": session.LandingRoute})
}

func (h Handlers) Register(c *gin.Context) {
	var req api.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Backend.Register(c.Request.Context(), req); err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"registered": true, "redirect": "/login"})
}

type resetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset answers the same way whether or not the account exists.
func (h Handlers) RequestPasswordReset(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if _, err := h.Backend.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		logger.FromGin(c).Warn("password reset request failed", "err", err)
		c.AbortWithStatusJSON(api.StatusOr(err, http.StatusBadGateway), gin.H{"error": msgResetFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgResetSent})
}

// SetNewPassword accepts the reset token from the body or the ?token= link parameter.
func (h Handlers) SetNewPassword(c *gin.Context) {
	var req api.NewPassword
	if req.Token = c.Query("token"); req.Token == "" {
		var body struct {
			Token string `json:"token"`
		}
		_ = c.ShouldBindBodyWithJSON(&body)
		req.Token = body.Token
	}
	if req.Token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msgMissingToken})
		return
	}

	var body struct {
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindBodyWithJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	req.NewPassword = body.NewPassword

	if _, err := h.Backend.ResetPassword(c.Request.Context(), req); err != nil {
		logger.FromGin(c).Warn("set new password failed", "err", err)
		c.AbortWithStatusJSON(api.StatusOr(err, http.StatusBadGateway), gin.H{"error": msgPasswordError})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgPasswordSet, "redirect": "/login"})
}
