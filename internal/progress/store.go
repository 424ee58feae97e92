package progress

import "context"

// Store persists progress updates.
type Store interface {
	Create(ctx context.Context, u *Update) error
	// ListBySlot returns a slot's timeline, newest first.
	ListBySlot(ctx context.Context, slotID string) ([]*Update, error)
}
