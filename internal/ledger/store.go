package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store persists contributions and owns the coupled slot-total mutation.
//
// Error contract: sentinel.ErrNotFound when a contribution does not exist,
// wrapped infrastructure errors otherwise. Finalize never errors on duplicate
// delivery; it reports applied=false instead.
type Store interface {
	Create(ctx context.Context, c *Contribution) error
	GetByIntent(ctx context.Context, intentID string) (*Contribution, error)
	ListBySlot(ctx context.Context, slotID string) ([]*Contribution, error)
	ListBySponsor(ctx context.Context, sponsorID string) ([]*Contribution, error)

	// Finalize transitions the contribution for intentID out of pending. The
	// transition is status-guarded: if the row is already terminal nothing
	// changes and applied is false. On a pending→completed transition the
	// owning slot's running total is incremented in the same transaction, so
	// redelivered gateway events can never double-apply.
	Finalize(ctx context.Context, intentID string, status PaymentStatus) (c *Contribution, applied bool, err error)

	// RankSponsors sums completed contributions per sponsor, descending by
	// total, ties broken by sponsor id.
	RankSponsors(ctx context.Context, limit int) ([]SponsorRank, error)
	TotalCompleted(ctx context.Context) (decimal.Decimal, error)
	DistinctSponsors(ctx context.Context) (int, error)
}
