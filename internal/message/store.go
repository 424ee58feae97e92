package message

import "context"

// Store persists messages.
//
// Error contract: sentinel.ErrNotFound when the message does not exist,
// wrapped infrastructure errors otherwise.
type Store interface {
	Create(ctx context.Context, m *Message) error
	// ListBySlot returns a slot's thread, oldest first.
	ListBySlot(ctx context.Context, slotID string) ([]*Message, error)
	// MarkRead marks the message read if recipientID is its receiver.
	MarkRead(ctx context.Context, id, recipientID string) (*Message, error)
}
