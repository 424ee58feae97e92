package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrCapacity: a hard capacity ceiling prevented the write
// - ErrExpired: challenge has passed its expiry
// - ErrAlreadyUsed: single-use resource (OTP code) already consumed
// - ErrInvalidState: entity in wrong state for requested transition
// - ErrUnavailable: external collaborator or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domainerrors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
