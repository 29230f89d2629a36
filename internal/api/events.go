package api

import (
	"context"
	"net/http"
	"strconv"

	"event-planner-web/internal/events"
)

func (c *Client) ListEvents(ctx context.Context) ([]events.Event, error) {
	var out envelope[[]events.Event]
	err := c.do(ctx, http.MethodGet, "/events/", nil, &out, "An error occurred while getting events.")
	return out.Data, err
}

func (c *Client) FilterEvents(ctx context.Context, f events.Filters) ([]events.Event, error) {
	var out envelope[[]events.Event]
	err := c.do(ctx, http.MethodGet, "/events/filter", nil, &out, "An error occurred while getting events.",
		withQuery(f.Query()))
	return out.Data, err
}

func (c *Client) GetEvent(ctx context.Context, id int64) (events.Event, error) {
	var out envelope[events.Event]
	err := c.do(ctx, http.MethodGet, eventPath(id), nil, &out, "An error occurred while getting event.")
	return out.Data, err
}

func (c *Client) CreateEvent(ctx context.Context, d events.Draft) (events.Event, error) {
	var out envelope[events.Event]
	err := c.do(ctx, http.MethodPost, "/events/", d, &out, "An error occurred while creating event.")
	return out.Data, err
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, d events.Draft) (events.Event, error) {
	var out envelope[events.Event]
	err := c.do(ctx, http.MethodPut, eventPath(id), d, &out, "An error occurred while updating event.")
	return out.Data, err
}

// CancelEvent marks the event inactive; the backend keeps it for history.
func (c *Client) CancelEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, "/events/cancel/"+strconv.FormatInt(id, 10), nil, nil,
		"An error occurred while cancelling event.")
}

func (c *Client) EventStatistics(ctx context.Context) ([]events.Stats, error) {
	var out envelope[[]events.Stats]
	err := c.do(ctx, http.MethodGet, "/events/statistics", nil, &out, "An error occurred while getting statistics.")
	return out.Data, err
}

func eventPath(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10)
}
