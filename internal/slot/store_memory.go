package slot

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"harambee/pkg/platform/sentinel"
)

// InMemoryStore keeps slots in memory for tests and development. The single
// mutex makes the capacity check-then-insert and funding increments atomic,
// matching the guarantees the postgres store gets from transactions.
type InMemoryStore struct {
	mu       sync.RWMutex
	slots    map[string]*Slot
	capacity int
}

// NewMemory constructs an empty in-memory slot store with the given capacity.
func NewMemory(capacity int) *InMemoryStore {
	return &InMemoryStore{
		slots:    make(map[string]*Slot),
		capacity: capacity,
	}
}

func (s *InMemoryStore) Create(_ context.Context, slot *Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.slots) >= s.capacity {
		return fmt.Errorf("slot ceiling %d reached: %w", s.capacity, sentinel.ErrCapacity)
	}

	cp := *slot
	s.slots[slot.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id)
}

func (s *InMemoryStore) GetByOwner(_ context.Context, ownerID string) (*Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, slot := range s.slots {
		if slot.OwnerID == ownerID {
			cp := *slot
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("slot for owner not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) List(_ context.Context) ([]*Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		cp := *slot
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) NextAvailable(_ context.Context) (*Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next *Slot
	for _, slot := range s.slots {
		if slot.CurrentAmount.GreaterThanOrEqual(slot.TargetAmount) {
			continue
		}
		if next == nil || slot.CreatedAt.Before(next.CreatedAt) {
			next = slot
		}
	}
	if next == nil {
		return nil, fmt.Errorf("no underfunded slot: %w", sentinel.ErrNotFound)
	}
	cp := *next
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, slot *Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.find(slot.ID)
	if err != nil {
		return err
	}

	cp := *slot
	// Funding fields are ledger-owned; keep whatever the store has.
	cp.CurrentAmount = existing.CurrentAmount
	cp.TargetAmount = existing.TargetAmount
	cp.UpdatedAt = time.Now()
	s.slots[slot.ID] = &cp
	return nil
}

func (s *InMemoryStore) ApplyFunding(_ context.Context, id string, amount decimal.Decimal) (*Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, fmt.Errorf("slot %s not found: %w", id, sentinel.ErrNotFound)
	}

	slot.CurrentAmount = slot.CurrentAmount.Add(amount)
	slot.Status = DeriveFundingStatus(slot.CurrentAmount, slot.TargetAmount, slot.Status)
	slot.UpdatedAt = time.Now()

	cp := *slot
	return &cp, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots), nil
}

func (s *InMemoryStore) CountActive(_ context.Context, threshold int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, slot := range s.slots {
		if slot.TrainingProgress >= threshold {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) find(id string) (*Slot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, fmt.Errorf("slot %s not found: %w", id, sentinel.ErrNotFound)
	}
	cp := *slot
	return &cp, nil
}
