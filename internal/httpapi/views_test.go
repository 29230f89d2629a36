package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"event-planner-web/internal/realtime"
	"event-planner-web/pkg/logger"

	"github.com/gorilla/websocket"
)

// wsPair returns both ends of one websocket: the server side as seen by a
// view and the browser side.
func wsPair(t *testing.T) (server, browser *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	browser, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = browser.Close() })

	select {
	case server = <-conns:
		t.Cleanup(func() { _ = server.Close() })
	case <-time.After(2 * time.Second):
		t.Fatalf("no server connection")
	}
	return server, browser
}

func TestView_WritesFramesInOrder(t *testing.T) {
	server, browser := wsPair(t)
	v := newView(server, logger.Discard())
	defer v.close(websocket.CloseNormalClosure, "")

	for _, title := range []string{"a", "b", "c"} {
		v.send("notification", map[string]string{"title": title})
	}

	_ = browser.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{"a", "b", "c"} {
		_, raw, err := browser.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		msg, err := realtime.Decode(raw)
		if err != nil || msg.Event != "notification" || !strings.Contains(string(msg.Data), `"`+want+`"`) {
			t.Fatalf("unexpected frame %s (%v), want title %q", raw, err, want)
		}
	}
}

func TestView_SendNeverBlocksOnAStuckBrowser(t *testing.T) {
	server, browser := wsPair(t)
	// No writer goroutine: the queue fills up as it would behind a stuck browser.
	v := &view{conn: server, log: logger.Discard(), out: make(chan []byte, 1), quit: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		v.send("notification", "first")
		v.send("notification", "second")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("send blocked on a full queue")
	}

	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if !closed {
		t.Fatalf("expected the lagging view to be dropped")
	}
	_ = browser.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := browser.ReadMessage(); err == nil {
		t.Fatalf("expected the browser connection closed")
	}

	v.send("notification", "after close")
	v.close(websocket.CloseNormalClosure, "")
}

func TestView_CloseSendsCode(t *testing.T) {
	server, browser := wsPair(t)
	v := newView(server, logger.Discard())

	v.close(CloseUnauthenticated, "unauthenticated")
	v.close(CloseUnauthenticated, "unauthenticated")

	_ = browser.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := browser.ReadMessage(); !websocket.IsCloseError(err, CloseUnauthenticated) {
		t.Fatalf("expected close %d, got %v", CloseUnauthenticated, err)
	}
}
