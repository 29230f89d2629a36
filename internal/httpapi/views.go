package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"event-planner-web/internal/events"
	"event-planner-web/internal/notify"
	"event-planner-web/internal/realtime"
	"event-planner-web/internal/session"
	"event-planner-web/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	viewWriteTimeout = 5 * time.Second

	// viewQueueSize bounds the frames waiting for one browser.
	viewQueueSize = 64

	// CloseUnauthenticated is the close code telling the browser to go back to
	// the landing route.
	CloseUnauthenticated = 4401
)

var upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}

// view is one browser websocket mounted on a page. Frames are queued by send
// and written by the view's own goroutine, so a slow browser never holds up
// the shared realtime reader or the other views.
type view struct {
	conn *websocket.Conn
	log  *slog.Logger
	out  chan []byte
	quit chan struct{}

	mu     sync.Mutex
	closed bool
}

func newView(conn *websocket.Conn, log *slog.Logger) *view {
	v := &view{
		conn: conn,
		log:  log,
		out:  make(chan []byte, viewQueueSize),
		quit: make(chan struct{}),
	}
	go v.writeLoop()
	return v
}

func (v *view) send(event string, data any) {
	frame, err := realtime.Encode(event, data)
	if err != nil {
		v.log.Warn("view frame not encoded", "event", event, "err", err)
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	select {
	case v.out <- frame:
	default:
		v.log.Warn("view not keeping up, dropping it", "event", event)
		v.shutdownLocked()
	}
}

func (v *view) writeLoop() {
	for {
		select {
		case <-v.quit:
			return
		case frame := <-v.out:
			_ = v.conn.SetWriteDeadline(time.Now().Add(viewWriteTimeout))
			if err := v.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				v.log.Debug("view write failed", "err", err)
				v.mu.Lock()
				v.shutdownLocked()
				v.mu.Unlock()
				return
			}
		}
	}
}

func (v *view) close(code int, reason string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	_ = v.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	v.shutdownLocked()
}

func (v *view) shutdownLocked() {
	if v.closed {
		return
	}
	v.closed = true
	close(v.quit)
	_ = v.conn.Close()
}

// wait blocks until the browser goes away. Browser frames are ignored.
func (v *view) wait() {
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// mount acquires the client's realtime channel, upgrades the request and runs
// the view until the browser leaves or the session ends. subscribe registers
// the view's handlers and returns their teardown. Teardown is deferred so an
// abnormal disconnect still releases everything.
func (h Handlers) mount(c *gin.Context, name string, subscribe func(ch *realtime.Channel, v *view) func()) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	log := logger.FromGin(c).With("view", name)

	ch, err := h.Hub.Acquire(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, realtime.ErrNoToken) || errors.Is(err, realtime.ErrUnauthorized) ||
			errors.Is(err, realtime.ErrDisconnected) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "redirect": session.LandingRoute})
			return
		}
		log.Warn("realtime unavailable", "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "realtime unavailable"})
		return
	}
	defer h.Hub.Release(ch)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug("view upgrade failed", "err", err)
		return
	}
	v := newView(conn, log)
	defer v.close(websocket.CloseNormalClosure, "")

	if ctrl, ok := session.From(c); ok {
		unwatch := ctrl.OnChange(func(_, to session.State) {
			if to == session.StateUnauthenticated {
				v.close(CloseUnauthenticated, "unauthenticated")
			}
		})
		defer unwatch()
	}

	teardown := subscribe(ch, v)
	defer teardown()

	log.Debug("view mounted")
	v.wait()
	log.Debug("view unmounted")
}

// EventsOverviewSocket relays newly created events as calendar entries.
func (h Handlers) EventsOverviewSocket(c *gin.Context) {
	h.mount(c, "events-overview", func(ch *realtime.Channel, v *view) func() {
		sub := ch.On(realtime.EventNewEvent, func(data json.RawMessage) {
			var ev events.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				v.log.Warn("dropping malformed newEvent", "err", err)
				return
			}
			v.send(realtime.EventNewEvent, events.ToCalendarEntry(ev))
		})
		return sub.Off
	})
}

// NotificationsSocket relays reminder and update notifications after they
// have been stored in the inbox.
func (h Handlers) NotificationsSocket(c *gin.Context) {
	h.mount(c, "notifications", func(ch *realtime.Channel, v *view) func() {
		return h.Feed.Attach(ch, func(n notify.Notification) {
			v.send("notification", n)
		})
	})
}
