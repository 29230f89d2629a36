package notify

import (
	"context"
	"sync"
)

// MemoryRepo keeps notifications in process. Inboxes are lost on restart,
// matching a browser whose bell is only filled while it is open.
type MemoryRepo struct {
	mu      sync.Mutex
	inboxes map[string]*memoryInbox
}

type memoryInbox struct {
	items  []Notification // oldest first
	hasNew bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{inboxes: make(map[string]*memoryInbox)}
}

func (r *MemoryRepo) inbox(clientID string) *memoryInbox {
	in, ok := r.inboxes[clientID]
	if !ok {
		in = &memoryInbox{}
		r.inboxes[clientID] = in
	}
	return in
}

func (r *MemoryRepo) Append(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := r.inbox(n.ClientID)
	in.items = append(in.items, n)
	in.hasNew = true
	return nil
}

func (r *MemoryRepo) List(_ context.Context, clientID string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.inboxes[clientID]
	if !ok {
		return nil, nil
	}
	out := make([]Notification, 0, len(in.items))
	for i := len(in.items) - 1; i >= 0; i-- {
		out = append(out, in.items[i])
	}
	return out, nil
}

func (r *MemoryRepo) Remove(_ context.Context, clientID string, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.inboxes[clientID]
	if !ok {
		return 0, nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := in.items[:0]
	removed := 0
	for _, n := range in.items {
		if _, ok := drop[n.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	in.items = kept
	return removed, nil
}

func (r *MemoryRepo) RemoveAll(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inboxes, clientID)
	return nil
}

func (r *MemoryRepo) HasNew(_ context.Context, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.inboxes[clientID]
	return ok && in.hasNew, nil
}

func (r *MemoryRepo) MarkSeen(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if in, ok := r.inboxes[clientID]; ok {
		in.hasNew = false
	}
	return nil
}
