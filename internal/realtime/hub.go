package realtime

import (
	"context"
	"log/slog"
	"sync"

	"event-planner-web/pkg/logger"
)

// Hub owns one Channel per client and counts the views using it.
// A channel is connected while at least one view holds it.
type Hub struct {
	store TokenStore
	opts  Options
	log   *slog.Logger

	mu       sync.Mutex
	channels map[string]*hubEntry
}

type hubEntry struct {
	ch   *Channel
	refs int
}

func NewHub(store TokenStore, opts Options, log *slog.Logger) *Hub {
	return &Hub{
		store:    store,
		opts:     opts,
		log:      logger.OrDefault(log),
		channels: make(map[string]*hubEntry),
	}
}

// Acquire connects the client's channel for one more view.
// On error the view holds nothing and must not call Release.
func (h *Hub) Acquire(ctx context.Context, clientID string) (*Channel, error) {
	h.mu.Lock()
	e, ok := h.channels[clientID]
	if !ok {
		e = &hubEntry{ch: NewChannel(clientID, h.store, h.opts, h.log)}
		h.channels[clientID] = e
	}
	e.refs++
	h.mu.Unlock()

	if err := e.ch.Connect(ctx); err != nil {
		h.Release(e.ch)
		return nil, err
	}
	return e.ch, nil
}

// Release gives back a channel obtained from Acquire. The last release disconnects it.
func (h *Hub) Release(ch *Channel) {
	h.mu.Lock()
	e, ok := h.channels[ch.clientID]
	if !ok || e.ch != ch {
		h.mu.Unlock()
		return
	}
	e.refs--
	last := e.refs <= 0
	if last {
		delete(h.channels, ch.clientID)
	}
	h.mu.Unlock()

	if last {
		ch.Disconnect()
	}
}

// Drop disconnects a client's channel regardless of how many views hold it.
// Later releases of that channel are ignored.
func (h *Hub) Drop(clientID string) {
	h.mu.Lock()
	e, ok := h.channels[clientID]
	delete(h.channels, clientID)
	h.mu.Unlock()

	if ok {
		e.ch.Disconnect()
		h.log.Info("realtime channel dropped", "client_id", clientID)
	}
}

// Lookup returns the client's channel if a view currently holds it.
func (h *Hub) Lookup(clientID string) (*Channel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.channels[clientID]; ok {
		return e.ch, true
	}
	return nil, false
}

// Refs reports how many views hold the client's channel.
func (h *Hub) Refs(clientID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.channels[clientID]; ok {
		return e.refs
	}
	return 0
}

func (h *Hub) Close() {
	h.mu.Lock()
	entries := h.channels
	h.channels = make(map[string]*hubEntry)
	h.mu.Unlock()

	for _, e := range entries {
		e.ch.Disconnect()
	}
}
