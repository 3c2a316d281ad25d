package wizard

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and throwaway sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]map[string]json.RawMessage
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]map[string]json.RawMessage)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, sessionID uuid.UUID, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.items[sessionID][key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, sessionID uuid.UUID, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots, ok := m.items[sessionID]
	if !ok {
		slots = make(map[string]json.RawMessage)
		m.items[sessionID] = slots
	}
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	slots[key] = stored
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, sessionID uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items[sessionID], key)
	return nil
}
