package realtime

import (
	"context"
	"slices"
	"sync"
)

// MemoryChannel delivers payloads in-process. Publish calls handlers
// synchronously, which makes it the channel of choice in tests and
// single-instance deployments.
type MemoryChannel struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
	closed bool
}

var _ Channel = (*MemoryChannel)(nil)

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{subs: make(map[string]map[int]Handler)}
}

func (m *MemoryChannel) Publish(_ context.Context, key string, payload []byte) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	ids := make([]int, 0, len(m.subs[key]))
	for id := range m.subs[key] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m.subs[key][id])
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(slices.Clone(payload))
	}
	return nil
}

func (m *MemoryChannel) Subscribe(_ context.Context, key string, onMessage Handler) (Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.nextID++
	id := m.nextID
	if m.subs[key] == nil {
		m.subs[key] = make(map[int]Handler)
	}
	m.subs[key][id] = onMessage

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[key], id)
		if len(m.subs[key]) == 0 {
			delete(m.subs, key)
		}
	}, nil
}

// Subscribers reports how many handlers listen on key.
func (m *MemoryChannel) Subscribers(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[key])
}

// Close drops every subscription; later calls fail with ErrClosed.
func (m *MemoryChannel) Close() {
	m.mu.Lock()
	m.closed = true
	m.subs = make(map[string]map[int]Handler)
	m.mu.Unlock()
}
