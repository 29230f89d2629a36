package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"event-planner-web/internal/realtime"
	"event-planner-web/pkg/logger"
)

// Feed records a client's reminder and update pushes into its inbox once,
// however many bell views are open, and hands each stored entry to those views.
type Feed struct {
	svc *Service
	log *slog.Logger

	mu      sync.Mutex
	clients map[string]*feedClient
}

type feedClient struct {
	ch        *realtime.Channel
	subs      []*realtime.Subscription
	listeners map[uint64]func(Notification)
	next      uint64
}

func NewFeed(svc *Service, log *slog.Logger) *Feed {
	return &Feed{svc: svc, log: logger.OrDefault(log), clients: make(map[string]*feedClient)}
}

// Attach starts delivering the client's new notifications to fn.
// The returned detach is safe to call more than once.
func (f *Feed) Attach(ch *realtime.Channel, fn func(Notification)) (detach func()) {
	id := ch.ClientID()

	f.mu.Lock()
	fc, ok := f.clients[id]
	if !ok {
		fc = &feedClient{listeners: make(map[uint64]func(Notification))}
		f.clients[id] = fc
	}
	if fc.ch != ch {
		// The hub replaced the channel; follow the new one.
		for _, s := range fc.subs {
			s.Off()
		}
		fc.ch = ch
		fc.subs = []*realtime.Subscription{
			ch.On(realtime.EventReminder, f.recorder(id, f.svc.RecordReminder)),
			ch.On(realtime.EventUpdatedEvent, f.recorder(id, f.svc.RecordUpdate)),
		}
	}
	fc.next++
	key := fc.next
	fc.listeners[key] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { f.detach(id, fc, key) })
	}
}

func (f *Feed) detach(id string, fc *feedClient, key uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(fc.listeners, key)
	if len(fc.listeners) > 0 {
		return
	}
	for _, s := range fc.subs {
		s.Off()
	}
	if f.clients[id] == fc {
		delete(f.clients, id)
	}
}

// Listeners reports how many views receive the client's notifications.
func (f *Feed) Listeners(clientID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fc, ok := f.clients[clientID]; ok {
		return len(fc.listeners)
	}
	return 0
}

type recordFunc func(ctx context.Context, clientID string, data json.RawMessage) (Notification, error)

func (f *Feed) recorder(clientID string, record recordFunc) realtime.Handler {
	return func(data json.RawMessage) {
		n, err := record(context.Background(), clientID, data)
		if err != nil {
			f.log.Warn("notification not recorded", "client_id", clientID, "err", err)
			return
		}

		f.mu.Lock()
		var fns []func(Notification)
		if fc, ok := f.clients[clientID]; ok {
			fns = make([]func(Notification), 0, len(fc.listeners))
			for _, fn := range fc.listeners {
				fns = append(fns, fn)
			}
		}
		f.mu.Unlock()

		for _, fn := range fns {
			fn(n)
		}
	}
}
