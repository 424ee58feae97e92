package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"harambee/internal/ledger"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/sentinel"
)

const defaultRankingLimit = 10

// Service is the contribution ledger: append-only contribution records plus
// the aggregates derived from them. A contribution enters pending and the
// owning slot's running total moves only when reconciliation confirms it, so
// the total always equals the sum of completed contributions.
type Service struct {
	store  ledger.Store
	logger *slog.Logger
}

func New(store ledger.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// RecordInput describes a pending contribution to append.
type RecordInput struct {
	SponsorID       string
	SponsorName     string
	SlotID          string
	Amount          decimal.Decimal
	Kind            ledger.Kind
	Component       ledger.Component
	GatewayIntentID string
}

func (in RecordInput) validate() error {
	switch {
	case in.SponsorID == "":
		return dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	case in.SlotID == "":
		return dErrors.New(dErrors.CodeBadRequest, "slot id is required")
	case !in.Amount.IsPositive():
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	case !in.Kind.Valid():
		return dErrors.New(dErrors.CodeBadRequest, "unknown sponsorship kind")
	}
	if in.Component != "" && !in.Component.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown component type")
	}
	return nil
}

// Record appends a pending contribution. It deliberately does not move the
// slot total: that happens once, on confirmed completion.
func (s *Service) Record(ctx context.Context, in RecordInput) (*ledger.Contribution, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	component := in.Component
	if component == "" {
		component = ledger.ComponentFull
	}

	now := time.Now()
	c := &ledger.Contribution{
		ID:              uuid.NewString(),
		SlotID:          in.SlotID,
		SponsorID:       in.SponsorID,
		SponsorName:     in.SponsorName,
		Amount:          in.Amount,
		Kind:            in.Kind,
		Component:       component,
		PaymentStatus:   ledger.PaymentPending,
		GatewayIntentID: in.GatewayIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to record contribution", err)
	}
	return c, nil
}

// Finalize moves the contribution for intentID to a terminal status. The
// returned applied flag is false for duplicates (already terminal).
func (s *Service) Finalize(ctx context.Context, intentID string, status ledger.PaymentStatus) (*ledger.Contribution, bool, error) {
	c, applied, err := s.store.Finalize(ctx, intentID, status)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.New(dErrors.CodeNotFound, "no contribution for gateway intent")
		}
		return nil, false, dErrors.Wrap(dErrors.CodeInternal, "failed to finalize contribution", err)
	}
	return c, applied, nil
}

// RankSponsors returns the sponsor leaderboard over completed contributions.
func (s *Service) RankSponsors(ctx context.Context, limit int) ([]ledger.SponsorRank, error) {
	if limit <= 0 {
		limit = defaultRankingLimit
	}
	if limit > 100 {
		limit = 100
	}
	ranks, err := s.store.RankSponsors(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to rank sponsors", err)
	}
	return ranks, nil
}

func (s *Service) ListBySlot(ctx context.Context, slotID string) ([]*ledger.Contribution, error) {
	out, err := s.store.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list contributions", err)
	}
	return out, nil
}

func (s *Service) ListBySponsor(ctx context.Context, sponsorID string) ([]*ledger.Contribution, error) {
	out, err := s.store.ListBySponsor(ctx, sponsorID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list contributions", err)
	}
	return out, nil
}
