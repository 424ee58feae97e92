package otp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"harambee/pkg/platform/sentinel"
)

// InMemoryStore keeps challenges in memory for tests and development. The
// mutex makes Consume's match-and-mark atomic.
type InMemoryStore struct {
	mu         sync.Mutex
	challenges []*Challenge
}

// NewMemory constructs an empty in-memory challenge store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, c *Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.challenges = append(s.challenges, &cp)
	return nil
}

func (s *InMemoryStore) Consume(_ context.Context, identifier, code string, now time.Time) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.challenges {
		if c.Identifier != identifier || c.Code != code {
			continue
		}
		if c.Verified || !c.ExpiresAt.After(now) {
			continue
		}
		c.Verified = true
		cp := *c
		return &cp, nil
	}
	return nil, fmt.Errorf("no live challenge for identifier: %w", sentinel.ErrNotFound)
}
