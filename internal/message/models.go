// Package message holds the sponsor-villager message thread attached to a
// slot. Delivery is poll-based; there is no realtime relay.
package message

import "time"

// Message is one entry in a slot's thread.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	SlotID     string    `json:"slotId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}
