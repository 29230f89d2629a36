package api

import (
	"context"
	"net/http"

	"event-planner-web/internal/clientid"
)

type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Registration struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type NewPassword struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a token and stores it for the calling client.
// The session controller still has to be told to re-read storage.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	id, err := clientid.From(ctx)
	if err != nil {
		return err
	}
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &out, "An error occurred while logging in."); err != nil {
		return err
	}
	if out.Token == "" {
		return ErrNoToken
	}
	c.tokens.Set(ctx, id, out.Token)
	return nil
}

func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, http.MethodPost, "/users/", reg, nil, "An error occurred while registering.")
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/auth/request-password-reset", map[string]string{"email": email}, &out,
		"An error occurred while requesting password reset.")
	return out.Message, err
}

func (c *Client) ResetPassword(ctx context.Context, np NewPassword) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/auth/reset-password", np, &out,
		"An error occurred while setting new password.")
	return out.Message, err
}
