package otp

import (
	"context"
	"time"
)

// Store persists challenges.
//
// Error contract: Consume returns sentinel.ErrNotFound when no live challenge
// matches (covering wrong code, expired, and already-verified uniformly;
// stores do not leak which), and wrapped infrastructure errors otherwise.
type Store interface {
	Create(ctx context.Context, c *Challenge) error
	// Consume atomically marks the first live matching challenge verified.
	// The check and the mark are one operation so two racing verify calls
	// with the same valid code cannot both succeed.
	Consume(ctx context.Context, identifier, code string, now time.Time) (*Challenge, error)
}
