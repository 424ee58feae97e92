// Package service computes the public impact rollup shown on the landing
// page.
package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	dErrors "harambee/pkg/domainerrors"
)

// activeProgressThreshold is the training progress at which a villager counts
// as an active rider.
const activeProgressThreshold = 75

// familiesPerSlot scales slots into the families-impacted estimate.
const familiesPerSlot = 4

// SlotCounter answers the slot-side rollup queries.
type SlotCounter interface {
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context, threshold int) (int, error)
}

// LedgerAggregator answers the money-side rollup queries.
type LedgerAggregator interface {
	TotalCompleted(ctx context.Context) (decimal.Decimal, error)
	DistinctSponsors(ctx context.Context) (int, error)
}

// Stats is the public impact summary.
type Stats struct {
	TotalSponsors    int             `json:"totalSponsors"`
	TotalSlots       int             `json:"totalSlots"`
	ActiveRiders     int             `json:"activeRiders"`
	TotalRaised      decimal.Decimal `json:"totalRaised"`
	FamiliesImpacted int             `json:"familiesImpacted"`
}

type Service struct {
	slots  SlotCounter
	ledger LedgerAggregator
	logger *slog.Logger
}

func New(slots SlotCounter, ledger LedgerAggregator, logger *slog.Logger) *Service {
	return &Service{slots: slots, ledger: ledger, logger: logger}
}

// Summary gathers the rollup. The four queries are independent, so they run
// concurrently; any failure fails the whole summary.
func (s *Service) Summary(ctx context.Context) (*Stats, error) {
	var out Stats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.slots.Count(ctx)
		out.TotalSlots = n
		return err
	})
	g.Go(func() error {
		n, err := s.slots.CountActive(ctx, activeProgressThreshold)
		out.ActiveRiders = n
		return err
	})
	g.Go(func() error {
		total, err := s.ledger.TotalCompleted(ctx)
		out.TotalRaised = total
		return err
	})
	g.Go(func() error {
		n, err := s.ledger.DistinctSponsors(ctx)
		out.TotalSponsors = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to gather stats", err)
	}

	out.FamiliesImpacted = out.TotalSlots * familiesPerSlot
	return &out, nil
}
