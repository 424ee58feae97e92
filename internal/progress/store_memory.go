package progress

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps progress updates in memory for tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	updates []*Update
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, u *Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	s.updates = append(s.updates, &cp)
	return nil
}

func (s *InMemoryStore) ListBySlot(_ context.Context, slotID string) ([]*Update, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Update
	for _, u := range s.updates {
		if u.SlotID == slotID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
