package slot

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks a slot through funding and the post-funding lifecycle.
// The first three are derived from the funding ratio; in_training and active
// are set only by explicit owner action, never by the ledger.
type Status string

const (
	StatusAvailable       Status = "available"
	StatusPartiallyFunded Status = "partially_funded"
	StatusFullyFunded     Status = "fully_funded"
	StatusInTraining      Status = "in_training"
	StatusActive          Status = "active"
)

// IsLifecycle reports whether the status is an owner-set post-funding state.
func (s Status) IsLifecycle() bool {
	return s == StatusInTraining || s == StatusActive
}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPartiallyFunded, StatusFullyFunded, StatusInTraining, StatusActive:
		return true
	}
	return false
}

// ProgramType governs the funding target. The target is fixed per program;
// caller-supplied amounts are ignored to prevent tampering.
type ProgramType string

const (
	ProgramStandard      ProgramType = "standard"
	ProgramBikeDeposit   ProgramType = "bike_deposit"
	ProgramNairobiDriver ProgramType = "nairobi_driver"
)

func (p ProgramType) Valid() bool {
	switch p {
	case ProgramStandard, ProgramBikeDeposit, ProgramNairobiDriver:
		return true
	}
	return false
}

// TargetAmount returns the fixed funding target for the program in KES.
func (p ProgramType) TargetAmount() decimal.Decimal {
	if p == ProgramBikeDeposit {
		return decimal.NewFromInt(20000)
	}
	return decimal.NewFromInt(65000)
}

// LicenseType is the driving license class held by the slot's villager, if any.
type LicenseType string

const LicenseNone LicenseType = "none"

func (l LicenseType) Valid() bool {
	switch l {
	case LicenseNone, "A", "B", "C", "D", "E", "F", "G":
		return true
	}
	return false
}

// Slot is a fundable villager slot with a fixed target and a running total
// maintained exclusively by the contribution ledger.
type Slot struct {
	ID               string          `json:"id"`
	OwnerID          string          `json:"ownerId"`
	Name             string          `json:"name"`
	Age              int             `json:"age"`
	County           string          `json:"county"`
	Constituency     string          `json:"constituency"`
	Ward             string          `json:"ward"`
	Story            string          `json:"story"`
	Dream            string          `json:"dream,omitempty"`
	TargetAmount     decimal.Decimal `json:"targetAmount"`
	CurrentAmount    decimal.Decimal `json:"currentAmount"`
	Status           Status          `json:"status"`
	LicenseType      LicenseType     `json:"licenseType"`
	ProgramType      ProgramType     `json:"programType"`
	TrainingProgress int             `json:"trainingProgress"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// DeriveFundingStatus recomputes the funding status from amounts, preserving
// owner-set lifecycle states.
func DeriveFundingStatus(current, target decimal.Decimal, existing Status) Status {
	if existing.IsLifecycle() {
		return existing
	}
	switch {
	case target.IsPositive() && current.GreaterThanOrEqual(target):
		return StatusFullyFunded
	case current.IsPositive():
		return StatusPartiallyFunded
	default:
		return StatusAvailable
	}
}
