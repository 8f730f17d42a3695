package settings

import (
	"context"
	"sync"

	"github.com/faciam-dev/crudkit/sdk"
)

// MemoryStore is a process local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	byKey map[string]sdk.Setting
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: make(map[string]sdk.Setting)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (sdk.Setting, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byKey[key]
	return s, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, s sdk.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[key] = s
	return nil
}

func (m *MemoryStore) Purge(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey = make(map[string]sdk.Setting)
	return nil
}

// Len reports the number of cached settings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey)
}
