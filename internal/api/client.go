// Package api talks to the external event planner REST backend on behalf of a browser.
//
// The client id travelling in the request context selects whose token is
// attached. A 401 from the backend clears that token.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"event-planner-web/internal/clientid"
	"event-planner-web/pkg/logger"

	"github.com/go-resty/resty/v2"
)

type TokenStore interface {
	Get(ctx context.Context, clientID string) string
	Set(ctx context.Context, clientID, token string)
	Clear(ctx context.Context, clientID string)
}

type Client struct {
	http   *resty.Client
	tokens TokenStore
	log    *slog.Logger
}

func New(baseURL string, timeout time.Duration, tokens TokenStore, log *slog.Logger) *Client {
	c := &Client{tokens: tokens, log: logger.OrDefault(log)}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.attachToken).
		OnAfterResponse(c.dropTokenOnUnauthorized)
	return c
}

func (c *Client) attachToken(_ *resty.Client, r *resty.Request) error {
	ctx := r.Context()
	id, err := clientid.From(ctx)
	if err != nil {
		return nil
	}
	if tok := c.tokens.Get(ctx, id); tok != "" {
		r.SetAuthToken(tok)
	}
	return nil
}

func (c *Client) dropTokenOnUnauthorized(_ *resty.Client, resp *resty.Response) error {
	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}
	ctx := resp.Request.Context()
	id, err := clientid.From(ctx)
	if err != nil {
		return nil
	}
	c.tokens.Clear(ctx, id)
	logger.From(ctx).Info("backend rejected token, cleared", "client_id", id, "path", resp.Request.URL)
	return nil
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type requestOption func(*resty.Request)

func withQuery(q url.Values) requestOption {
	return func(r *resty.Request) { r.SetQueryParamsFromValues(q) }
}

// do executes one call. out, when non-nil, receives the decoded success body.
// Any failure comes back as *Error with fallback as its message unless the
// backend supplied one.
func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string, opts ...requestOption) error {
	req := c.http.R().SetContext(ctx).SetError(&errorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	for _, o := range opts {
		o(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Warn("backend request failed", "method", method, "path", path, "err", err)
		return &Error{Message: fallback, cause: err}
	}
	if resp.IsError() {
		msg := fallback
		if eb, ok := resp.Error().(*errorBody); ok && eb.Message != "" {
			msg = eb.Message
		}
		return &Error{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}
