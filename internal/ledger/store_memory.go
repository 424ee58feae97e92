package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"harambee/internal/slot"
	"harambee/pkg/platform/sentinel"
)

// SlotFunder is the slice of the slot store the ledger needs: the atomic
// funding increment applied when a contribution completes.
type SlotFunder interface {
	ApplyFunding(ctx context.Context, slotID string, amount decimal.Decimal) (*slot.Slot, error)
}

// InMemoryStore keeps contributions in memory for tests and development. Its
// mutex guards the status transition, so a finalize that loses the race
// observes the terminal state and reports applied=false, same as the
// conditional UPDATE in the postgres store.
type InMemoryStore struct {
	mu            sync.RWMutex
	contributions map[string]*Contribution
	byIntent      map[string]string
	funder        SlotFunder
}

// NewMemory constructs an in-memory ledger store. funder receives the slot
// increment on completion; it may be nil in tests that only exercise rows.
func NewMemory(funder SlotFunder) *InMemoryStore {
	return &InMemoryStore{
		contributions: make(map[string]*Contribution),
		byIntent:      make(map[string]string),
		funder:        funder,
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.contributions[c.ID] = &cp
	if c.GatewayIntentID != "" {
		s.byIntent[c.GatewayIntentID] = c.ID
	}
	return nil
}

func (s *InMemoryStore) GetByIntent(_ context.Context, intentID string) (*Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIntent[intentID]
	if !ok {
		return nil, fmt.Errorf("contribution for intent not found: %w", sentinel.ErrNotFound)
	}
	cp := *s.contributions[id]
	return &cp, nil
}

func (s *InMemoryStore) ListBySlot(_ context.Context, slotID string) ([]*Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *Contribution) bool { return c.SlotID == slotID }), nil
}

func (s *InMemoryStore) ListBySponsor(_ context.Context, sponsorID string) ([]*Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *Contribution) bool { return c.SponsorID == sponsorID }), nil
}

func (s *InMemoryStore) Finalize(ctx context.Context, intentID string, status PaymentStatus) (*Contribution, bool, error) {
	if !status.Terminal() {
		return nil, false, fmt.Errorf("finalize to %q: %w", status, sentinel.ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byIntent[intentID]
	if !ok {
		return nil, false, fmt.Errorf("contribution for intent not found: %w", sentinel.ErrNotFound)
	}
	c := s.contributions[id]

	if c.PaymentStatus != PaymentPending {
		cp := *c
		return &cp, false, nil
	}

	if status == PaymentCompleted && s.funder != nil {
		if _, err := s.funder.ApplyFunding(ctx, c.SlotID, c.Amount); err != nil {
			return nil, false, fmt.Errorf("apply funding: %w", err)
		}
	}

	c.PaymentStatus = status
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, true, nil
}

func (s *InMemoryStore) RankSponsors(_ context.Context, limit int) ([]SponsorRank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]*SponsorRank)
	for _, c := range s.contributions {
		if c.PaymentStatus != PaymentCompleted {
			continue
		}
		r, ok := totals[c.SponsorID]
		if !ok {
			r = &SponsorRank{SponsorID: c.SponsorID, SponsorName: c.SponsorName, TotalAmount: decimal.Zero}
			totals[c.SponsorID] = r
		}
		r.TotalAmount = r.TotalAmount.Add(c.Amount)
		if r.SponsorName == "" {
			r.SponsorName = c.SponsorName
		}
	}

	ranks := make([]SponsorRank, 0, len(totals))
	for _, r := range totals {
		ranks = append(ranks, *r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].TotalAmount.Equal(ranks[j].TotalAmount) {
			return ranks[i].SponsorID < ranks[j].SponsorID
		}
		return ranks[i].TotalAmount.GreaterThan(ranks[j].TotalAmount)
	})
	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	for i := range ranks {
		ranks[i].Rank = i + 1
	}
	return ranks, nil
}

func (s *InMemoryStore) TotalCompleted(_ context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, c := range s.contributions {
		if c.PaymentStatus == PaymentCompleted {
			total = total.Add(c.Amount)
		}
	}
	return total, nil
}

func (s *InMemoryStore) DistinctSponsors(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, c := range s.contributions {
		seen[c.SponsorID] = struct{}{}
	}
	return len(seen), nil
}

func (s *InMemoryStore) filter(keep func(*Contribution) bool) []*Contribution {
	var out []*Contribution
	for _, c := range s.contributions {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
