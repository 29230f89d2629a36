package token

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in process memory. Used for local development and tests.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string

	// FailWith, when set, is returned by every operation. Tests use it to
	// simulate a broken storage medium.
	FailWith error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]map[string]string{}}
}

func (m *MemoryBackend) Load(_ context.Context, clientID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return "", m.FailWith
	}
	v, ok := m.data[clientID][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Save(_ context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	kv, ok := m.data[clientID]
	if !ok {
		kv = map[string]string{}
		m.data[clientID] = kv
	}
	kv[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, clientID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	kv, ok := m.data[clientID]
	if !ok {
		return nil
	}
	delete(kv, key)
	if len(kv) == 0 {
		delete(m.data, clientID)
	}
	return nil
}
