package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"event-planner-web/internal/token"
	"event-planner-web/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	testClient = "client-1"
	goodToken  = "good"
)

type pushServer struct {
	srv   *httptest.Server
	conns chan *websocket.Conn

	// hits counts handshake attempts; failFirst makes that many answer 503.
	hits      atomic.Int32
	failFirst atomic.Int32
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{conns: make(chan *websocket.Conn, 8)}
	up := websocket.Upgrader{}
	ps.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.hits.Add(1)
		if ps.failFirst.Add(-1) >= 0 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ps.conns <- conn
	}))
	t.Cleanup(ps.srv.Close)
	return ps
}

func (ps *pushServer) url() string {
	return "ws" + strings.TrimPrefix(ps.srv.URL, "http")
}

func (ps *pushServer) next(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-ps.conns:
		t.Cleanup(func() { _ = c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("no connection reached the server")
		return nil
	}
}

func (ps *pushServer) options() Options {
	return Options{URL: ps.url(), MaxRetries: 2, Backoff: time.Millisecond, HandshakeTimeout: time.Second}
}

func newStore(t *testing.T, tok string) *token.Storage {
	t.Helper()
	s := token.NewStorage(token.NewMemoryBackend(), token.NewLocalSignal(), logger.Discard())
	if tok != "" {
		s.Set(context.Background(), testClient, tok)
	}
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
