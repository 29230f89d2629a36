// Package token keeps each browser's bearer token and decides whether it is still usable.
//
// Storage is the only writer-facing API. It never returns storage errors to
// callers: writes fail silently with a log line, reads degrade to "no token".
// Every successful write or removal is announced on a Signal so that other
// observers (other tabs, other replicas) can react without polling.
package token

import (
	"context"
	"errors"
	"log/slog"

	"event-planner-web/pkg/logger"
)

// Key is the fixed storage key holding the bearer token.
const Key = "authToken"

// ErrNotFound is returned by backends when the key is absent.
var ErrNotFound = errors.New("token: not found")

// Backend persists string values per client and key.
// Delete must succeed when the key is already absent.
type Backend interface {
	Load(ctx context.Context, clientID, key string) (string, error)
	Save(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID, key string) error
}

// Storage reads and writes the bearer token of a client.
type Storage struct {
	backend Backend
	signal  Signal
	log     *slog.Logger
}

// NewStorage builds a Storage. signal may be nil when nobody needs change notifications.
func NewStorage(backend Backend, signal Signal, log *slog.Logger) *Storage {
	return &Storage{backend: backend, signal: signal, log: logger.OrDefault(log)}
}

// Set persists token for clientID, overwriting any prior value.
func (s *Storage) Set(ctx context.Context, clientID, token string) {
	if clientID == "" || token == "" {
		s.log.Error("failed to set auth token", "err", "client id and token are required")
		return
	}
	if err := s.backend.Save(ctx, clientID, Key, token); err != nil {
		s.log.Error("failed to set auth token", "client_id", clientID, "err", err)
		return
	}
	s.announce(ctx, ChangeEvent{ClientID: clientID, Key: Key, NewValue: token})
}

// Get returns the stored token, or "" when it is absent or cannot be read.
func (s *Storage) Get(ctx context.Context, clientID string) string {
	if clientID == "" {
		return ""
	}
	v, err := s.backend.Load(ctx, clientID, Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("failed to get auth token", "client_id", clientID, "err", err)
		}
		return ""
	}
	return v
}

// Clear removes the token, tolerating absence.
func (s *Storage) Clear(ctx context.Context, clientID string) {
	if clientID == "" {
		return
	}
	if err := s.backend.Delete(ctx, clientID, Key); err != nil {
		s.log.Error("failed to clear auth token", "client_id", clientID, "err", err)
		return
	}
	s.announce(ctx, ChangeEvent{ClientID: clientID, Key: Key})
}

func (s *Storage) announce(ctx context.Context, ev ChangeEvent) {
	if s.signal == nil {
		return
	}
	if err := s.signal.Publish(ctx, ev); err != nil {
		s.log.Warn("storage change not announced", "client_id", ev.ClientID, "err", err)
	}
}
