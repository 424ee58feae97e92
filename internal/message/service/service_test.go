package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"harambee/internal/message"
	"harambee/internal/slot"
	dErrors "harambee/pkg/domainerrors"
)

type MessageServiceSuite struct {
	suite.Suite
	ctx   context.Context
	slots *slot.InMemoryStore
	svc   *Service
}

func (s *MessageServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.slots = slot.NewMemory(2000)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = New(message.NewMemory(), s.slots, logger)

	now := time.Now()
	s.Require().NoError(s.slots.Create(s.ctx, &slot.Slot{
		ID:           "slot-1",
		OwnerID:      "villager-1",
		Name:         "Wanjiru Kamau",
		TargetAmount: decimal.NewFromInt(65000),
		Status:       slot.StatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func TestMessageServiceSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceSuite))
}

func (s *MessageServiceSuite) TestSend_DefaultsReceiverToOwner() {
	m, err := s.svc.Send(s.ctx, "sponsor-1", SendInput{SlotID: "slot-1", Content: "Habari!"})
	s.Require().NoError(err)
	s.Equal("villager-1", m.ReceiverID)
	s.Equal("sponsor-1", m.SenderID)
	s.False(m.IsRead)
}

func (s *MessageServiceSuite) TestSend_Validation() {
	_, err := s.svc.Send(s.ctx, "", SendInput{SlotID: "slot-1", Content: "hi"})
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))

	_, err = s.svc.Send(s.ctx, "sponsor-1", SendInput{SlotID: "slot-1", Content: "   "})
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = s.svc.Send(s.ctx, "sponsor-1", SendInput{SlotID: "slot-1", Content: strings.Repeat("a", 2001)})
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = s.svc.Send(s.ctx, "sponsor-1", SendInput{SlotID: "missing", Content: "hi"})
	s.True(dErrors.Is(err, dErrors.CodeNotFound))

	_, err = s.svc.Send(s.ctx, "villager-1", SendInput{SlotID: "slot-1", Content: "hi"})
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *MessageServiceSuite) TestThreadOrderedOldestFirst() {
	first, err := s.svc.Send(s.ctx, "sponsor-1", SendInput{SlotID: "slot-1", Content: "first"})
	s.Require().NoError(err)
	_, err = s.svc.Send(s.ctx, "sponsor-2", SendInput{SlotID: "slot-1", Content: "second"})
	s.Require().NoError(err)

	thread, err := s.svc.ListBySlot(s.ctx, "slot-1")
	s.Require().NoError(err)
	s.Require().Len(thread, 2)
	s.Equal(first.ID, thread[0].ID)
}

func (s *MessageServiceSuite) TestMarkRead_OnlyReceiver() {
	m, err := s.svc.Send(s.ctx, "sponsor-1", SendInput{SlotID: "slot-1", Content: "hi"})
	s.Require().NoError(err)

	_, err = s.svc.MarkRead(s.ctx, "sponsor-1", m.ID)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))

	read, err := s.svc.MarkRead(s.ctx, "villager-1", m.ID)
	s.Require().NoError(err)
	s.True(read.IsRead)
}
