package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"harambee/internal/progress"
	"harambee/internal/slot"
	dErrors "harambee/pkg/domainerrors"
)

// SlotUpdater is the slice of the slot service the progress flow needs:
// owner-gated training progress movement.
type SlotUpdater interface {
	Get(ctx context.Context, id string) (*slot.Slot, error)
	SetTrainingProgress(ctx context.Context, callerID, id string, progress int) (*slot.Slot, error)
}

// Service owns the progress timeline. Creating an update also moves the
// slot's training progress, so the slot card and the timeline never disagree.
type Service struct {
	store  progress.Store
	slots  SlotUpdater
	logger *slog.Logger
}

func New(store progress.Store, slots SlotUpdater, logger *slog.Logger) *Service {
	return &Service{store: store, slots: slots, logger: logger}
}

// CreateInput describes a progress update to post.
type CreateInput struct {
	SlotID      string
	Phase       progress.Phase
	Description string
	Progress    int
}

// Create posts an update on the caller's slot. Only the slot owner may post;
// the ownership check rides on the slot update underneath.
func (s *Service) Create(ctx context.Context, callerID string, in CreateInput) (*progress.Update, error) {
	if callerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}
	description := strings.TrimSpace(in.Description)
	switch {
	case in.SlotID == "":
		return nil, dErrors.New(dErrors.CodeBadRequest, "slot id is required")
	case !in.Phase.Valid():
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown progress phase")
	case description == "":
		return nil, dErrors.New(dErrors.CodeBadRequest, "description is required")
	case in.Progress < 0 || in.Progress > 100:
		return nil, dErrors.New(dErrors.CodeBadRequest, "progress must be between 0 and 100")
	}

	// Ownership and bounds enforced here; a non-owner gets Forbidden before
	// anything is written.
	if _, err := s.slots.SetTrainingProgress(ctx, callerID, in.SlotID, in.Progress); err != nil {
		return nil, err
	}

	u := &progress.Update{
		ID:          uuid.NewString(),
		SlotID:      in.SlotID,
		Phase:       in.Phase,
		Description: description,
		Progress:    in.Progress,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to store progress update", err)
	}

	s.logger.InfoContext(ctx, "progress update posted",
		"slot_id", in.SlotID,
		"phase", string(in.Phase),
		"progress", in.Progress,
	)
	return u, nil
}

// ListBySlot returns a slot's timeline, newest first. The slot must exist.
func (s *Service) ListBySlot(ctx context.Context, slotID string) ([]*progress.Update, error) {
	if _, err := s.slots.Get(ctx, slotID); err != nil {
		return nil, err
	}
	out, err := s.store.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list progress updates", err)
	}
	return out, nil
}
