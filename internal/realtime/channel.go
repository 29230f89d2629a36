// Package realtime keeps one push connection to the event backend per browser
// and fans its named messages out to the views that subscribed.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"event-planner-web/pkg/logger"

	"github.com/gorilla/websocket"
)

var (
	ErrNoToken      = errors.New("realtime: no token")
	ErrUnauthorized = errors.New("realtime: handshake rejected")
	ErrDisconnected = errors.New("realtime: disconnected while connecting")
)

type TokenStore interface {
	Get(ctx context.Context, clientID string) string
	Clear(ctx context.Context, clientID string)
}

type Options struct {
	URL string

	// MaxRetries is the number of extra dial attempts after the first one.
	MaxRetries int
	// Backoff is multiplied by the attempt number between attempts.
	Backoff time.Duration

	HandshakeTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	return o
}

type Handler func(data json.RawMessage)

// Channel is the push connection of one client.
// Handlers run on the reader goroutine, one message at a time, in arrival order.
type Channel struct {
	clientID string
	store    TokenStore
	opts     Options
	dialer   websocket.Dialer
	log      *slog.Logger

	// mu guards the connection state only; it is never held while dialing.
	mu      sync.Mutex
	conn    *websocket.Conn
	wanted  bool
	attempt *dialAttempt

	hmu      sync.RWMutex
	handlers map[string][]*Subscription
}

// dialAttempt is one in-flight connect. Concurrent Connect calls share its result.
type dialAttempt struct {
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	aborted bool
}

func NewChannel(clientID string, store TokenStore, opts Options, log *slog.Logger) *Channel {
	opts = opts.withDefaults()
	return &Channel{
		clientID: clientID,
		store:    store,
		opts:     opts,
		dialer:   websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		log:      logger.OrDefault(log).With("client_id", clientID),
		handlers: make(map[string][]*Subscription),
	}
}

func (c *Channel) ClientID() string { return c.clientID }

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect opens the connection unless it is already open. A call made while
// another dial is in flight waits for that dial instead of starting a second one.
// Without a stored token nothing is dialed and ErrNoToken is returned.
// A 401 handshake clears the stored token. Disconnect aborts a pending dial
// and makes it return ErrDisconnected.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	if a := c.attempt; a != nil {
		c.mu.Unlock()
		select {
		case <-a.done:
			return a.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	a := c.begin(ctx)
	c.mu.Unlock()

	return c.run(a)
}

// begin registers a new attempt. Call with c.mu held.
func (c *Channel) begin(ctx context.Context) *dialAttempt {
	actx, cancel := context.WithCancel(ctx)
	a := &dialAttempt{ctx: actx, cancel: cancel, done: make(chan struct{})}
	c.attempt = a
	return a
}

// run dials without holding c.mu and publishes the outcome.
func (c *Channel) run(a *dialAttempt) error {
	defer a.cancel()

	var (
		conn *websocket.Conn
		err  = ErrNoToken
	)
	if tok := c.store.Get(a.ctx, c.clientID); tok != "" {
		conn, err = c.dial(a.ctx, tok)
	}

	c.mu.Lock()
	c.attempt = nil
	if a.aborted {
		if conn != nil {
			_ = conn.Close()
		}
		conn, err = nil, ErrDisconnected
	}
	if err == nil {
		c.conn = conn
		go c.readLoop(conn)
	}
	c.wanted = err == nil
	a.err = err
	close(a.done)
	c.mu.Unlock()

	switch {
	case err == nil:
		c.log.Info("realtime connected")
	case errors.Is(err, ErrNoToken):
		c.log.Warn("realtime connect skipped, no token")
	case errors.Is(err, ErrDisconnected):
		c.log.Debug("realtime connect aborted")
	default:
		c.log.Warn("realtime connect failed", "err", err)
	}
	c.dropRejectedToken(a.ctx, err)
	return err
}

// dropRejectedToken must run without c.mu held: clearing the token notifies
// the session, which may disconnect this channel.
func (c *Channel) dropRejectedToken(ctx context.Context, err error) {
	if errors.Is(err, ErrUnauthorized) {
		c.store.Clear(context.WithoutCancel(ctx), c.clientID)
	}
}

func (c *Channel) dial(ctx context.Context, tok string) (*websocket.Conn, error) {
	header := http.Header{"Authorization": {"Bearer " + tok}}

	var lastErr error
	for i := 0; i <= c.opts.MaxRetries; i++ {
		conn, resp, err := c.dialOnce(ctx, header)
		if err == nil {
			return conn, nil
		}
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		if i < c.opts.MaxRetries {
			backoff := c.opts.Backoff * time.Duration(i+1)
			c.log.Debug("realtime dial failed, retrying",
				"attempt", i+1, "max_attempts", c.opts.MaxRetries+1, "backoff", backoff, "err", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("realtime: dial %s: %w", c.opts.URL, lastErr)
}

// dialOnce runs one handshake. The dialer only applies deadlines to the
// handshake, so the socket is closed when ctx ends to abort a stalled one.
func (c *Channel) dialOnce(ctx context.Context, header http.Header) (*websocket.Conn, *http.Response, error) {
	var (
		mu    sync.Mutex
		stops []func() bool
	)
	d := c.dialer
	d.NetDialContext = func(dctx context.Context, network, addr string) (net.Conn, error) {
		nc, err := (&net.Dialer{}).DialContext(dctx, network, addr)
		if err != nil {
			return nil, err
		}
		stop := context.AfterFunc(ctx, func() { _ = nc.Close() })
		mu.Lock()
		stops = append(stops, stop)
		mu.Unlock()
		return nc, nil
	}

	conn, resp, err := d.DialContext(ctx, c.opts.URL, header)
	mu.Lock()
	for _, stop := range stops {
		stop()
	}
	mu.Unlock()
	return conn, resp, err
}

// Disconnect closes the connection and aborts a dial in flight.
// Calling it when closed does nothing. It never waits for a dial.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.wanted = false
	if a := c.attempt; a != nil {
		a.aborted = true
		a.cancel()
	}
	c.mu.Unlock()

	if conn == nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = conn.Close()
	c.log.Info("realtime disconnected")
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.lost(conn, err)
			return
		}
		msg, err := Decode(frame)
		if err != nil {
			c.log.Warn("dropping realtime frame", "err", err)
			continue
		}
		c.dispatch(msg)
	}
}

// lost handles a connection that ended without Disconnect and dials again
// with the usual retry budget.
func (c *Channel) lost(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	_ = conn.Close()
	c.log.Warn("realtime connection lost", "err", cause)

	if !c.wanted || c.attempt != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.reconnectBudget())
	defer cancel()
	a := c.begin(ctx)
	c.mu.Unlock()

	_ = c.run(a)
}

func (c *Channel) reconnectBudget() time.Duration {
	n := time.Duration(c.opts.MaxRetries + 1)
	return n*c.opts.HandshakeTimeout + n*n*c.opts.Backoff
}

// Subscription is one registered handler. Off removes exactly this handler.
type Subscription struct {
	ch    *Channel
	event string
	fn    Handler
	once  sync.Once
}

func (s *Subscription) Off() {
	s.once.Do(func() { s.ch.remove(s) })
}

// On registers fn for event. Registering the same func twice yields two
// independent subscriptions.
func (c *Channel) On(event string, fn Handler) *Subscription {
	s := &Subscription{ch: c, event: event, fn: fn}
	c.hmu.Lock()
	c.handlers[event] = append(c.handlers[event], s)
	c.hmu.Unlock()
	return s
}

func (c *Channel) remove(s *Subscription) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	subs := c.handlers[s.event]
	for i, v := range subs {
		if v == s {
			c.handlers[s.event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(c.handlers[s.event]) == 0 {
		delete(c.handlers, s.event)
	}
}

// HandlerCount returns the number of live subscriptions for event.
func (c *Channel) HandlerCount(event string) int {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	return len(c.handlers[event])
}

func (c *Channel) dispatch(msg Message) {
	c.hmu.RLock()
	subs := append([]*Subscription(nil), c.handlers[msg.Event]...)
	c.hmu.RUnlock()

	for _, s := range subs {
		s.fn(msg.Data)
	}
}
