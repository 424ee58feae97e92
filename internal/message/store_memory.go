package message

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"harambee/pkg/platform/sentinel"
)

// InMemoryStore keeps messages in memory for tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string]*Message
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{messages: make(map[string]*Message)}
}

func (s *InMemoryStore) Create(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListBySlot(_ context.Context, slotID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Message
	for _, m := range s.messages {
		if m.SlotID == slotID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, id, recipientID string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok || m.ReceiverID != recipientID {
		return nil, fmt.Errorf("message not found: %w", sentinel.ErrNotFound)
	}
	m.IsRead = true
	cp := *m
	return &cp, nil
}
