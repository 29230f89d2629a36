package api

import (
	"context"
	"net/http"
	"strconv"

	"event-planner-web/internal/events"
)

func (c *Client) ListUsers(ctx context.Context) ([]events.User, error) {
	var out envelope[[]events.User]
	err := c.do(ctx, http.MethodGet, "/users/", nil, &out, "An error occurred while getting users.")
	return out.Data, err
}

func (c *Client) GetUser(ctx context.Context, id int64) (events.User, error) {
	var out envelope[events.User]
	err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, &out, "An error occurred while getting user.")
	return out.Data, err
}

// SendInvitation invites a user to an event. New invitations start pending.
func (c *Client) SendInvitation(ctx context.Context, inv events.Invitation) error {
	if inv.Status == "" {
		inv.Status = events.InvitationPending
	}
	return c.do(ctx, http.MethodPost, "/invitations/", inv, nil, "An error occurred while sending invitation.")
}
