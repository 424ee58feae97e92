package otp

import "time"

// Challenge is a short-lived single-use code proving control of an email
// address or phone number before account creation. Challenges are never
// reused: a resend creates a fresh row, and multiple unexpired challenges may
// coexist for the same identifier.
type Challenge struct {
	ID         string
	Identifier string
	Code       string
	ExpiresAt  time.Time
	Verified   bool
	CreatedAt  time.Time
}

// CodeLength is the fixed number of digits in a challenge code.
const CodeLength = 6

// TTL is the product contract for challenge validity.
const TTL = 10 * time.Minute
