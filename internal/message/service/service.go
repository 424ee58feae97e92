package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"harambee/internal/message"
	"harambee/internal/slot"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/sentinel"
)

const maxContentLength = 2000

// SlotReader resolves the slot a message thread belongs to.
type SlotReader interface {
	Get(ctx context.Context, id string) (*slot.Slot, error)
}

// Service owns the slot message threads.
type Service struct {
	store  message.Store
	slots  SlotReader
	logger *slog.Logger
}

func New(store message.Store, slots SlotReader, logger *slog.Logger) *Service {
	return &Service{store: store, slots: slots, logger: logger}
}

// SendInput describes a message to append to a slot's thread.
type SendInput struct {
	SlotID     string
	Content    string
	ReceiverID string
}

// Send appends a message. When the receiver is omitted it defaults to the
// slot owner, the common sponsor-to-villager direction.
func (s *Service) Send(ctx context.Context, senderID string, in SendInput) (*message.Message, error) {
	if senderID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}
	content := strings.TrimSpace(in.Content)
	switch {
	case in.SlotID == "":
		return nil, dErrors.New(dErrors.CodeBadRequest, "slot id is required")
	case content == "":
		return nil, dErrors.New(dErrors.CodeBadRequest, "message content is required")
	case len(content) > maxContentLength:
		return nil, dErrors.New(dErrors.CodeBadRequest, "message content is too long")
	}

	target, err := s.slots.Get(ctx, in.SlotID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.Is(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "slot not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to resolve slot", err)
	}

	receiverID := in.ReceiverID
	if receiverID == "" {
		receiverID = target.OwnerID
	}
	if receiverID == senderID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "cannot message yourself")
	}

	m := &message.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		SlotID:     target.ID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to store message", err)
	}
	return m, nil
}

// ListBySlot returns a slot's thread, oldest first.
func (s *Service) ListBySlot(ctx context.Context, slotID string) ([]*message.Message, error) {
	out, err := s.store.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list messages", err)
	}
	return out, nil
}

// MarkRead marks a message read. Only the receiver may do so; anyone else
// sees not-found.
func (s *Service) MarkRead(ctx context.Context, callerID, id string) (*message.Message, error) {
	if callerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}
	m, err := s.store.MarkRead(ctx, id, callerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "message not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to mark message read", err)
	}
	return m, nil
}
