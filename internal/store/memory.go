// internal/store/memory.go
//
// In-memory implementation of the Backend interface.
// Used for ephemeral play, development and tests, when durability is not required.
//
// Characteristics:
//   - Stores raw JSON values keyed by namespace then key.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

// memory is an in-memory map-based Backend implementation.
type memory struct {
	mu   sync.RWMutex                 // guards data map
	data map[string]map[string][]byte // namespace -> key -> value
}

// NewMemoryBackend constructs a new in-memory Backend.
func NewMemoryBackend() Backend {
	return &memory{data: make(map[string]map[string][]byte)}
}

// Get looks up a value; ok is false when the key was never written.
func (m *memory) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put adds or replaces the value.
func (m *memory) Put(ctx context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.data[namespace] = ns
	}
	ns[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the listed keys from a namespace.
func (m *memory) Delete(ctx context.Context, namespace string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data[namespace], k)
	}
	return nil
}
