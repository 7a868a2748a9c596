package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
)

// MemoryStore keeps plans in a map. It is used by tests and by the server when
// no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	plans   map[string]plan.Document
	updated map[string]time.Time
}

var _ DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans:   make(map[string]plan.Document),
		updated: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Save(ctx context.Context, id string, doc plan.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[id] = doc.Clone()
	m.updated[id] = time.Now().UTC()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (plan.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.plans[id]
	if !ok {
		return plan.Document{}, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.plans))
	for id := range m.plans {
		out = append(out, Summary{ID: id, UpdatedAt: m.updated[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plans, id)
	delete(m.updated, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
