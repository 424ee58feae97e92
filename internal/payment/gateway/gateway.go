// Package gateway talks to the external card payment provider. The provider
// exposes a Stripe-shaped API: form-encoded intent creation and signed
// webhook deliveries.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// IntentRequest describes the payment intent to open with the provider.
// Amount is in major currency units; the wire format uses minor units.
type IntentRequest struct {
	Amount          decimal.Decimal
	Currency        string
	VillagerID      string
	SponsorID       string
	SponsorshipType string
	ComponentType   string
}

// Intent is the provider-side handle for a pending payment.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// Client creates payment intents with the provider.
type Client interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}
