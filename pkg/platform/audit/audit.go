// Package audit keeps a durable trail of funding-significant actions. The
// operational log rotates away; the trail is the record that survives for
// reconciliation disputes.
package audit

import (
	"context"
	"time"
)

// Action identifies what happened.
type Action string

const (
	ActionContributionCompleted Action = "contribution_completed"
	ActionContributionFailed    Action = "contribution_failed"
	ActionSlotFullyFunded       Action = "slot_fully_funded"
)

// Event is one entry in the trail. Amount is carried as its string form so
// the trail never re-interprets money.
type Event struct {
	ID         string
	OccurredAt time.Time
	Action     Action
	ActorID    string
	SlotID     string
	IntentID   string
	Amount     string
	Detail     string
}

// Store persists trail entries.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
