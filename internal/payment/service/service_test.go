package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"harambee/internal/events"
	"harambee/internal/ledger"
	ledgersvc "harambee/internal/ledger/service"
	"harambee/internal/payment/gateway"
	"harambee/internal/slot"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/sentinel"
)

// fakeGateway hands out deterministic intents, or fails on demand.
type fakeGateway struct {
	nextID   string
	err      error
	requests []gateway.IntentRequest
}

func (f *fakeGateway) CreateIntent(_ context.Context, req gateway.IntentRequest) (*gateway.Intent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &gateway.Intent{ID: f.nextID, ClientSecret: f.nextID + "_secret", Status: "requires_payment_method"}, nil
}

type PaymentServiceSuite struct {
	suite.Suite
	ctx       context.Context
	slots     *slot.InMemoryStore
	ledgerSvc *ledgersvc.Service
	gw        *fakeGateway
	recorder  *events.Recorder
	svc       *Service

	slotID string
}

func (s *PaymentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.slots = slot.NewMemory(2000)
	s.ledgerSvc = ledgersvc.New(ledger.NewMemory(s.slots), logger)
	s.gw = &fakeGateway{nextID: "pi_1"}
	s.recorder = events.NewRecorder()
	s.svc = New(s.slots, s.ledgerSvc, s.gw, s.recorder, logger, nil)

	now := time.Now()
	target := &slot.Slot{
		ID:           "slot-1",
		OwnerID:      "villager-1",
		Name:         "Wanjiru Kamau",
		TargetAmount: decimal.NewFromInt(65000),
		Status:       slot.StatusAvailable,
		ProgramType:  slot.ProgramStandard,
		LicenseType:  slot.LicenseNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.slots.Create(s.ctx, target))
	s.slotID = target.ID
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) begin(amount int64) *PaymentIntent {
	intent, err := s.svc.BeginPayment(s.ctx, BeginPaymentInput{
		SponsorID:   "sponsor-1",
		SponsorName: "Alice Otieno",
		SlotID:      s.slotID,
		Amount:      decimal.NewFromInt(amount),
		Kind:        ledger.KindPartial,
	})
	s.Require().NoError(err)
	return intent
}

func (s *PaymentServiceSuite) TestBeginPayment_RecordsPendingContribution() {
	intent := s.begin(5000)

	s.Equal("pi_1", intent.IntentID)
	s.Equal("pi_1_secret", intent.ClientSecret)
	s.Equal(ledger.PaymentPending, intent.Contribution.PaymentStatus)
	s.Equal("pi_1", intent.Contribution.GatewayIntentID)

	// Pending money never moves the slot total.
	target, err := s.slots.Get(s.ctx, s.slotID)
	s.Require().NoError(err)
	s.True(target.CurrentAmount.IsZero())

	s.Require().Len(s.gw.requests, 1)
	s.Equal("KES", s.gw.requests[0].Currency)
	s.Equal(s.slotID, s.gw.requests[0].VillagerID)
	s.Equal("sponsor-1", s.gw.requests[0].SponsorID)
	s.Equal("partial", s.gw.requests[0].SponsorshipType)
	s.Equal("full", s.gw.requests[0].ComponentType)
}

func (s *PaymentServiceSuite) TestBeginPayment_GatewayDownLeavesNoRow() {
	s.gw.err = sentinel.ErrUnavailable

	_, err := s.svc.BeginPayment(s.ctx, BeginPaymentInput{
		SponsorID: "sponsor-1",
		SlotID:    s.slotID,
		Amount:    decimal.NewFromInt(5000),
	})
	s.True(dErrors.Is(err, dErrors.CodeGatewayUnavailable))

	rows, err := s.ledgerSvc.ListBySlot(s.ctx, s.slotID)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *PaymentServiceSuite) TestBeginPayment_UnknownSlot() {
	_, err := s.svc.BeginPayment(s.ctx, BeginPaymentInput{
		SponsorID: "sponsor-1",
		SlotID:    "nope",
		Amount:    decimal.NewFromInt(5000),
	})
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *PaymentServiceSuite) TestBeginPayment_Validation() {
	_, err := s.svc.BeginPayment(s.ctx, BeginPaymentInput{SlotID: s.slotID, Amount: decimal.NewFromInt(1)})
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))

	_, err = s.svc.BeginPayment(s.ctx, BeginPaymentInput{SponsorID: "sponsor-1", Amount: decimal.NewFromInt(1)})
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = s.svc.BeginPayment(s.ctx, BeginPaymentInput{SponsorID: "sponsor-1", SlotID: s.slotID, Amount: decimal.Zero})
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *PaymentServiceSuite) TestApplyGatewayEvent_SucceededMovesSlotOnce() {
	intent := s.begin(5000)

	result, err := s.svc.ApplyGatewayEvent(s.ctx, EventIntentSucceeded, intent.IntentID)
	s.Require().NoError(err)
	s.Equal(ResultApplied, result)

	target, err := s.slots.Get(s.ctx, s.slotID)
	s.Require().NoError(err)
	s.True(target.CurrentAmount.Equal(decimal.NewFromInt(5000)))
	s.Equal(slot.StatusPartiallyFunded, target.Status)

	// Redelivery is a no-op.
	result, err = s.svc.ApplyGatewayEvent(s.ctx, EventIntentSucceeded, intent.IntentID)
	s.Require().NoError(err)
	s.Equal(ResultDuplicate, result)

	target, err = s.slots.Get(s.ctx, s.slotID)
	s.Require().NoError(err)
	s.True(target.CurrentAmount.Equal(decimal.NewFromInt(5000)))

	evts := s.recorder.Events()
	s.Require().Len(evts, 1)
	s.Equal(events.TypeContributionCompleted, evts[0].Type)
	s.Equal(intent.IntentID, evts[0].IntentID)
}

func (s *PaymentServiceSuite) TestApplyGatewayEvent_FailedLeavesSlotUntouched() {
	intent := s.begin(5000)

	result, err := s.svc.ApplyGatewayEvent(s.ctx, EventIntentFailed, intent.IntentID)
	s.Require().NoError(err)
	s.Equal(ResultApplied, result)

	target, err := s.slots.Get(s.ctx, s.slotID)
	s.Require().NoError(err)
	s.True(target.CurrentAmount.IsZero())
	s.Equal(slot.StatusAvailable, target.Status)

	evts := s.recorder.Events()
	s.Require().Len(evts, 1)
	s.Equal(events.TypeContributionFailed, evts[0].Type)
}

func (s *PaymentServiceSuite) TestApplyGatewayEvent_FullyFundedAnnouncedOnce() {
	first := s.begin(60000)
	s.gw.nextID = "pi_2"
	second := s.begin(5000)
	s.gw.nextID = "pi_3"
	third := s.begin(1000)

	for _, intentID := range []string{first.IntentID, second.IntentID, third.IntentID} {
		_, err := s.svc.ApplyGatewayEvent(s.ctx, EventIntentSucceeded, intentID)
		s.Require().NoError(err)
	}

	target, err := s.slots.Get(s.ctx, s.slotID)
	s.Require().NoError(err)
	s.Equal(slot.StatusFullyFunded, target.Status)

	var funded int
	for _, e := range s.recorder.Events() {
		if e.Type == events.TypeSlotFullyFunded {
			funded++
		}
	}
	// Only the contribution that crossed the target announces it.
	s.Equal(1, funded)
}

func (s *PaymentServiceSuite) TestApplyGatewayEvent_UnknownIntentIsNoOp() {
	result, err := s.svc.ApplyGatewayEvent(s.ctx, EventIntentSucceeded, "pi_missing")
	s.Require().NoError(err)
	s.Equal(ResultUnmatched, result)
	s.Empty(s.recorder.Events())
}

func (s *PaymentServiceSuite) TestApplyGatewayEvent_UnhandledTypeIgnored() {
	result, err := s.svc.ApplyGatewayEvent(s.ctx, "payment_intent.created", "pi_whatever")
	s.Require().NoError(err)
	s.Equal(ResultIgnored, result)
}
