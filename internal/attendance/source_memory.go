package attendance

import (
	"context"
	"sync"

	"event-planner-web/internal/events"
)

// MemorySource serves fixed statistics; useful for tests and local development
// without a backend.
type MemorySource struct {
	mu   sync.Mutex
	Rows []events.Stats
	Err  error
}

func NewMemorySource(rows ...events.Stats) *MemorySource { return &MemorySource{Rows: rows} }

func (m *MemorySource) EventStatistics(context.Context) ([]events.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]events.Stats, len(m.Rows))
	copy(out, m.Rows)
	return out, nil
}
