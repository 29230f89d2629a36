package token

import (
	"context"
	"sync"
)

// ChangeEvent reports a storage mutation. An empty NewValue means the key was removed.
type ChangeEvent struct {
	ClientID string `json:"client_id"`
	Key      string `json:"key"`
	NewValue string `json:"new_value,omitempty"`
}

// Removed reports whether the event is a removal.
func (e ChangeEvent) Removed() bool { return e.NewValue == "" }

// Signal carries storage change notifications to subscribers.
// Subscribe returns a function that removes exactly that subscription.
type Signal interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	Subscribe(fn func(ChangeEvent)) (unsubscribe func())
}

// LocalSignal delivers events synchronously, in subscription order, within one process.
type LocalSignal struct {
	mu     sync.Mutex
	nextID uint64
	subs   []localSub
}

type localSub struct {
	id uint64
	fn func(ChangeEvent)
}

func NewLocalSignal() *LocalSignal { return &LocalSignal{} }

func (s *LocalSignal) Publish(_ context.Context, ev ChangeEvent) error {
	s.deliver(ev)
	return nil
}

func (s *LocalSignal) Subscribe(fn func(ChangeEvent)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, localSub{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *LocalSignal) deliver(ev ChangeEvent) {
	// Snapshot so subscribers may unsubscribe from inside their callback.
	s.mu.Lock()
	subs := make([]localSub, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

func (s *LocalSignal) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Len reports the number of live subscriptions.
func (s *LocalSignal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
