package ingest

import (
	"context"
	"sync"
)

// ContextKey is the slot name under which the reusable context is stored.
const ContextKey = "lastContext"

// ContextStore is the single-slot persistence for the reusable study
// material. Get reports ok=false when nothing has been stored yet.
type ContextStore interface {
	GetContext(ctx context.Context) (content string, ok bool, err error)
	SetContext(ctx context.Context, content string) error
}

// ContextClearer is implemented by stores that can forget the slot.
type ContextClearer interface {
	ClearContext(ctx context.Context) error
}

// MemoryStore is an in-process ContextStore, used in tests and when no
// durable store is configured.
type MemoryStore struct {
	mu      sync.Mutex
	content string
	set     bool
	Writes  int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetContext(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content, m.set, nil
}

func (m *MemoryStore) SetContext(_ context.Context, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	m.set = true
	m.Writes++
	return nil
}

func (m *MemoryStore) ClearContext(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = ""
	m.set = false
	return nil
}
