package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"harambee/internal/platform/metrics"
	"harambee/internal/slot"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/sentinel"
)

// Service owns slot allocation and profile mutations. Funding fields are
// ledger territory; this service never touches them.
type Service struct {
	store   slot.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store slot.Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// CreateInput carries caller-supplied slot attributes. Target amount is
// deliberately absent: it is derived from the program type.
type CreateInput struct {
	Name         string
	Age          int
	County       string
	Constituency string
	Ward         string
	Story        string
	Dream        string
	LicenseType  slot.LicenseType
	ProgramType  slot.ProgramType
}

func (in CreateInput) validate() error {
	switch {
	case in.Name == "":
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	case in.Age <= 0:
		return dErrors.New(dErrors.CodeBadRequest, "age must be positive")
	case in.Constituency == "":
		return dErrors.New(dErrors.CodeBadRequest, "constituency is required")
	case in.Ward == "":
		return dErrors.New(dErrors.CodeBadRequest, "ward is required")
	case in.Story == "":
		return dErrors.New(dErrors.CodeBadRequest, "story is required")
	}
	if in.ProgramType != "" && !in.ProgramType.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown program type")
	}
	if in.LicenseType != "" && !in.LicenseType.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown license type")
	}
	return nil
}

// Create allocates a slot for ownerID under the global capacity ceiling.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*slot.Slot, error) {
	if ownerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	program := in.ProgramType
	if program == "" {
		program = slot.ProgramStandard
	}
	license := in.LicenseType
	if license == "" {
		license = slot.LicenseNone
	}
	county := in.County
	if county == "" {
		county = "Kisii County"
	}

	now := time.Now()
	created := &slot.Slot{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          in.Name,
		Age:           in.Age,
		County:        county,
		Constituency:  in.Constituency,
		Ward:          in.Ward,
		Story:         in.Story,
		Dream:         in.Dream,
		TargetAmount:  program.TargetAmount(),
		CurrentAmount: decimal.Zero,
		Status:        slot.StatusAvailable,
		LicenseType:   license,
		ProgramType:   program,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, created); err != nil {
		if errors.Is(err, sentinel.ErrCapacity) {
			return nil, dErrors.New(dErrors.CodeCapacityExceeded,
				"no more sponsorship slots available for the current cycle")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create slot", err)
	}

	if s.metrics != nil {
		s.metrics.SlotsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "slot created",
		"slot_id", created.ID,
		"program_type", string(program),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*slot.Slot, error) {
	found, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "slot not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to fetch slot", err)
	}
	return found, nil
}

func (s *Service) GetByOwner(ctx context.Context, ownerID string) (*slot.Slot, error) {
	found, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no slot for caller")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to fetch slot", err)
	}
	return found, nil
}

func (s *Service) List(ctx context.Context) ([]*slot.Slot, error) {
	slots, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list slots", err)
	}
	return slots, nil
}

// NextAvailable returns the oldest underfunded slot, the priority slot shown
// to sponsors who do not pick one themselves.
func (s *Service) NextAvailable(ctx context.Context) (*slot.Slot, error) {
	next, err := s.store.NextAvailable(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "all slots are fully funded")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to fetch next slot", err)
	}
	return next, nil
}

// UpdateInput carries owner-editable fields. Nil pointers leave the field
// unchanged.
type UpdateInput struct {
	Name             *string
	Age              *int
	County           *string
	Constituency     *string
	Ward             *string
	Story            *string
	Dream            *string
	LicenseType      *slot.LicenseType
	Status           *slot.Status
	TrainingProgress *int
}

// Update mutates profile, progress, and lifecycle fields. Only the owner may
// call it; lifecycle states are the one status change allowed here.
func (s *Service) Update(ctx context.Context, callerID, id string, in UpdateInput) (*slot.Slot, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != callerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the slot owner may update it")
	}

	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Age != nil {
		if *in.Age <= 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "age must be positive")
		}
		existing.Age = *in.Age
	}
	if in.County != nil {
		existing.County = *in.County
	}
	if in.Constituency != nil {
		existing.Constituency = *in.Constituency
	}
	if in.Ward != nil {
		existing.Ward = *in.Ward
	}
	if in.Story != nil {
		existing.Story = *in.Story
	}
	if in.Dream != nil {
		existing.Dream = *in.Dream
	}
	if in.LicenseType != nil {
		if !in.LicenseType.Valid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown license type")
		}
		existing.LicenseType = *in.LicenseType
	}
	if in.Status != nil {
		// Funding statuses are derived by the ledger; owners may only move a
		// slot into its post-funding lifecycle.
		if !in.Status.IsLifecycle() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "status may only be set to in_training or active")
		}
		existing.Status = *in.Status
	}
	if in.TrainingProgress != nil {
		if *in.TrainingProgress < 0 || *in.TrainingProgress > 100 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "training progress must be between 0 and 100")
		}
		existing.TrainingProgress = *in.TrainingProgress
	}

	if err := s.store.Update(ctx, existing); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update slot", err)
	}
	return existing, nil
}

// SetTrainingProgress moves the slot's training progress; used by the
// progress-update flow after ownership has been checked.
func (s *Service) SetTrainingProgress(ctx context.Context, callerID, id string, progress int) (*slot.Slot, error) {
	return s.Update(ctx, callerID, id, UpdateInput{TrainingProgress: &progress})
}
