package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the contribution reconciliation state. Transitions are
// one-way: pending moves to exactly one of the terminal states and stays there.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether the status is absorbing.
func (p PaymentStatus) Terminal() bool {
	return p == PaymentCompleted || p == PaymentFailed
}

// Kind is the sponsorship shape chosen by the sponsor.
type Kind string

const (
	KindFull    Kind = "full"
	KindPartial Kind = "partial"
	KindGroup   Kind = "group"
)

func (k Kind) Valid() bool {
	return k == KindFull || k == KindPartial || k == KindGroup
}

// Component is the optional sub-kind a partial contribution funds.
type Component string

const ComponentFull Component = "full"

func (c Component) Valid() bool {
	switch c {
	case ComponentFull, "training", "housing", "transport", "bike":
		return true
	}
	return false
}

// Contribution is a single sponsor payment record against a slot. Amount is
// immutable once set; GatewayIntentID is the idempotency key for
// reconciliation and is unique among non-null values.
type Contribution struct {
	ID              string          `json:"id"`
	SlotID          string          `json:"slotId"`
	SponsorID       string          `json:"sponsorId"`
	SponsorName     string          `json:"sponsorName,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Kind            Kind            `json:"kind"`
	Component       Component       `json:"component"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	GatewayIntentID string          `json:"gatewayIntentId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// SponsorRank is one row of the sponsor leaderboard.
type SponsorRank struct {
	SponsorID   string          `json:"sponsorId"`
	SponsorName string          `json:"name"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Rank        int             `json:"rank"`
}
