package backend

import (
	"context"
	"sync"
)

// MemoryStore 是进程内的 ItemStore，条目随进程结束丢弃。
type MemoryStore struct {
	mu    sync.Mutex
	items []Item
}

var _ ItemStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Lookup(_ context.Context, q Query) (Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		best  Item
		found bool
	)
	for _, it := range m.items {
		if !q.Matches(it) {
			continue
		}
		if !found || it.Modified.After(best.Modified) {
			best, found = cloneItem(it), true
		}
	}
	return best, found, nil
}

func (m *MemoryStore) Update(_ context.Context, q Query, it Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	updated := false
	for i := range m.items {
		if q.Matches(m.items[i]) {
			m.items[i] = cloneItem(it)
			updated = true
		}
	}
	if !updated {
		return ErrNoItem
	}
	return nil
}

func (m *MemoryStore) Add(_ context.Context, it Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, cloneItem(it))
	return nil
}

// Len 返回条目数。
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func cloneItem(it Item) Item {
	it.Secret = append([]byte(nil), it.Secret...)
	return it
}
