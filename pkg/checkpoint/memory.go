package checkpoint

import (
	"context"
	"sync"
)

// MemoryStore keeps checkpoints in process memory. Nothing survives a
// restart, so it only suits tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	offsets map[string]uint64
	seen    map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		offsets: make(map[string]uint64),
		seen:    make(map[string]struct{}),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Save(ctx context.Context, key string, offset uint64) error {
	if err := ctx.Err(); err != nil {
		return unavailable("save", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsets[key] = offset
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, key string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("load", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offsets[key], nil
}

func (m *MemoryStore) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.offsets, key)
	return nil
}

func (m *MemoryStore) Seen(ctx context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[fingerprint]
	return ok, nil
}

func (m *MemoryStore) Mark(ctx context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[fingerprint] = struct{}{}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
