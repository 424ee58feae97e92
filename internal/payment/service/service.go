package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"harambee/internal/events"
	"harambee/internal/ledger"
	ledgersvc "harambee/internal/ledger/service"
	"harambee/internal/payment/gateway"
	"harambee/internal/platform/metrics"
	"harambee/internal/slot"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/sentinel"
)

const tracerName = "harambee/internal/payment"

// SlotReader resolves the slot a payment targets.
type SlotReader interface {
	Get(ctx context.Context, id string) (*slot.Slot, error)
}

// Ledger records pending contributions and moves them to terminal states.
// Satisfied by the contribution ledger service.
type Ledger interface {
	Record(ctx context.Context, in ledgersvc.RecordInput) (*ledger.Contribution, error)
	Finalize(ctx context.Context, intentID string, status ledger.PaymentStatus) (*ledger.Contribution, bool, error)
}

// Service coordinates the payment gateway with the contribution ledger: it
// opens gateway intents and reconciles the gateway's webhook outcomes.
type Service struct {
	slots     SlotReader
	ledger    Ledger
	gateway   gateway.Client
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

func New(slots SlotReader, l Ledger, gw gateway.Client, pub events.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		slots:     slots,
		ledger:    l,
		gateway:   gw,
		publisher: pub,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer(tracerName),
	}
}

// BeginPaymentInput describes a sponsor's payment attempt.
type BeginPaymentInput struct {
	SponsorID   string
	SponsorName string
	SlotID      string
	Amount      decimal.Decimal
	Kind        ledger.Kind
	Component   ledger.Component
}

// PaymentIntent is handed back to the client so it can confirm the payment
// with the provider directly.
type PaymentIntent struct {
	IntentID     string               `json:"intentId"`
	ClientSecret string               `json:"clientSecret"`
	Contribution *ledger.Contribution `json:"contribution"`
}

// BeginPayment validates the target slot, opens a gateway intent, and records
// the pending contribution carrying the intent id. A gateway failure surfaces
// before anything is written, so no orphan contribution rows exist.
func (s *Service) BeginPayment(ctx context.Context, in BeginPaymentInput) (*PaymentIntent, error) {
	ctx, span := s.tracer.Start(ctx, "payment.BeginPayment", trace.WithAttributes(
		attribute.String("slot.id", in.SlotID),
		attribute.String("contribution.kind", string(in.Kind)),
	))
	defer span.End()

	if in.SponsorID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}
	if in.SlotID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "slot id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	if in.Kind == "" {
		in.Kind = ledger.KindFull
	}
	if in.Component == "" {
		in.Component = ledger.ComponentFull
	}

	target, err := s.slots.Get(ctx, in.SlotID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "slot not found")
		}
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.IntentRequest{
		Amount:          in.Amount,
		Currency:        "KES",
		VillagerID:      target.ID,
		SponsorID:       in.SponsorID,
		SponsorshipType: string(in.Kind),
		ComponentType:   string(in.Component),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			s.logger.Error("payment gateway unavailable", "slot_id", in.SlotID, "error", err)
			return nil, dErrors.Wrap(dErrors.CodeGatewayUnavailable, "payment gateway is unavailable", err)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("gateway.intent_id", intent.ID))

	contribution, err := s.ledger.Record(ctx, ledgersvc.RecordInput{
		SponsorID:       in.SponsorID,
		SponsorName:     in.SponsorName,
		SlotID:          target.ID,
		Amount:          in.Amount,
		Kind:            in.Kind,
		Component:       in.Component,
		GatewayIntentID: intent.ID,
	})
	if err != nil {
		// The intent exists gateway-side but was never shown to the client;
		// it expires unconfirmed.
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PaymentIntentsCreated.Inc()
	}
	s.logger.Info("payment intent created",
		"intent_id", intent.ID,
		"slot_id", target.ID,
		"amount", in.Amount.StringFixed(2),
	)

	return &PaymentIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Contribution: contribution,
	}, nil
}

// Gateway webhook event types the reconciler understands.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// ApplyResult reports how a webhook delivery was handled.
type ApplyResult string

const (
	ResultApplied   ApplyResult = "applied"
	ResultDuplicate ApplyResult = "duplicate"
	ResultUnmatched ApplyResult = "unmatched"
	ResultIgnored   ApplyResult = "ignored"
)

// ApplyGatewayEvent reconciles one webhook delivery. It is idempotent:
// redeliveries and unknown intents are logged no-ops, and only the first
// terminal transition moves the slot total.
func (s *Service) ApplyGatewayEvent(ctx context.Context, eventType, intentID string) (ApplyResult, error) {
	ctx, span := s.tracer.Start(ctx, "payment.ApplyGatewayEvent", trace.WithAttributes(
		attribute.String("gateway.event_type", eventType),
		attribute.String("gateway.intent_id", intentID),
	))
	defer span.End()

	var status ledger.PaymentStatus
	switch eventType {
	case EventIntentSucceeded:
		status = ledger.PaymentCompleted
	case EventIntentFailed:
		status = ledger.PaymentFailed
	default:
		s.logger.Debug("ignoring gateway event type", "type", eventType)
		s.metrics.IncWebhookEvent(string(ResultIgnored))
		return ResultIgnored, nil
	}
	if intentID == "" {
		s.metrics.IncWebhookEvent(string(ResultUnmatched))
		return ResultUnmatched, nil
	}

	contribution, applied, err := s.ledger.Finalize(ctx, intentID, status)
	switch {
	case dErrors.Is(err, dErrors.CodeNotFound):
		s.logger.Warn("webhook for unknown payment intent", "intent_id", intentID)
		s.metrics.IncWebhookEvent(string(ResultUnmatched))
		return ResultUnmatched, nil
	case err != nil:
		s.metrics.IncWebhookEvent("error")
		return "", err
	case !applied:
		s.logger.Info("duplicate gateway delivery", "intent_id", intentID, "status", status)
		s.metrics.IncWebhookEvent(string(ResultDuplicate))
		return ResultDuplicate, nil
	}

	s.metrics.IncWebhookEvent(string(ResultApplied))
	s.recordOutcome(ctx, contribution, status)
	return ResultApplied, nil
}

func (s *Service) recordOutcome(ctx context.Context, c *ledger.Contribution, status ledger.PaymentStatus) {
	eventType := events.TypeContributionFailed
	if status == ledger.PaymentCompleted {
		eventType = events.TypeContributionCompleted
		if s.metrics != nil {
			s.metrics.ContributionsCompleted.Inc()
		}
	} else if s.metrics != nil {
		s.metrics.ContributionsFailed.Inc()
	}

	s.publish(ctx, events.Event{
		Type:           eventType,
		OccurredAt:     time.Now().UTC(),
		SlotID:         c.SlotID,
		SponsorID:      c.SponsorID,
		ContributionID: c.ID,
		IntentID:       c.GatewayIntentID,
		Amount:         c.Amount.StringFixed(2),
		Outcome:        string(status),
	})

	if status != ledger.PaymentCompleted {
		return
	}

	// Announce the crossing into fully funded exactly once: the completed
	// contribution that tipped the total over the target.
	updated, err := s.slots.Get(ctx, c.SlotID)
	if err != nil {
		s.logger.Error("failed to reload slot after completion", "slot_id", c.SlotID, "error", err)
		return
	}
	crossed := updated.CurrentAmount.GreaterThanOrEqual(updated.TargetAmount) &&
		updated.CurrentAmount.Sub(c.Amount).LessThan(updated.TargetAmount)
	if crossed {
		s.publish(ctx, events.Event{
			Type:       events.TypeSlotFullyFunded,
			OccurredAt: time.Now().UTC(),
			SlotID:     updated.ID,
			Amount:     updated.CurrentAmount.StringFixed(2),
		})
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish funding event", "type", event.Type, "error", err)
	}
}
