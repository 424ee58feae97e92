package slot

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store persists slots.
//
// Error contract: methods return sentinel.ErrNotFound when the slot does not
// exist, sentinel.ErrCapacity when Create would exceed the program ceiling,
// and wrapped infrastructure errors otherwise.
type Store interface {
	// Create inserts the slot, enforcing the program-wide capacity ceiling
	// atomically with the insert.
	Create(ctx context.Context, s *Slot) error
	Get(ctx context.Context, id string) (*Slot, error)
	GetByOwner(ctx context.Context, ownerID string) (*Slot, error)
	// List returns all slots, newest first.
	List(ctx context.Context) ([]*Slot, error)
	// NextAvailable returns the oldest slot still short of its target.
	NextAvailable(ctx context.Context) (*Slot, error)
	// Update persists profile and lifecycle fields. Funding fields on the
	// passed slot are ignored; only ApplyFunding moves them.
	Update(ctx context.Context, s *Slot) error
	// ApplyFunding atomically increments the running total by amount and
	// recomputes the funding status. It is the only mutation path for
	// CurrentAmount.
	ApplyFunding(ctx context.Context, id string, amount decimal.Decimal) (*Slot, error)
	Count(ctx context.Context) (int, error)
	// CountActive counts slots at or above the training-progress threshold.
	CountActive(ctx context.Context, threshold int) (int, error)
}
