package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"harambee/internal/ledger"
	"harambee/internal/platform/middleware"
	"harambee/internal/slot"
	slotsvc "harambee/internal/slot/service"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/httputil"
)

// Service defines the slot operations the handler needs.
type Service interface {
	Create(ctx context.Context, ownerID string, in slotsvc.CreateInput) (*slot.Slot, error)
	Get(ctx context.Context, id string) (*slot.Slot, error)
	List(ctx context.Context) ([]*slot.Slot, error)
	NextAvailable(ctx context.Context) (*slot.Slot, error)
	Update(ctx context.Context, callerID, id string, in slotsvc.UpdateInput) (*slot.Slot, error)
}

// ContributionLister lists a slot's contribution history.
type ContributionLister interface {
	ListBySlot(ctx context.Context, slotID string) ([]*ledger.Contribution, error)
}

// Handler exposes the slot endpoints. Reads are public so sponsors can browse
// without an account; writes require the owner's token.
type Handler struct {
	slots         Service
	contributions ContributionLister
	logger        *slog.Logger
	jwtValidator  middleware.JWTValidator
}

func New(slots Service, contributions ContributionLister, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		slots:         slots,
		contributions: contributions,
		logger:        logger,
		jwtValidator:  jwtValidator,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/slots", h.handleList)
	r.Get("/slots/next", h.handleNextAvailable)
	r.Get("/slots/{id}", h.handleGet)
	r.Get("/slots/{id}/contributions", h.handleContributions)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		pr.Post("/slots", h.handleCreate)
		pr.Put("/slots/{id}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slots.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list slots", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, slots)
}

func (h *Handler) handleNextAvailable(w http.ResponseWriter, r *http.Request) {
	next, err := h.slots.NextAvailable(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, next)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.slots.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleContributions(w http.ResponseWriter, r *http.Request) {
	// The slot must exist; an empty history on a real slot is [].
	if _, err := h.slots.Get(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	rows, err := h.contributions.ListBySlot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list contributions", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if rows == nil {
		rows = []*ledger.Contribution{}
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

type createRequest struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	County       string `json:"county"`
	Constituency string `json:"constituency"`
	Ward         string `json:"ward"`
	Story        string `json:"story"`
	Dream        string `json:"dream"`
	LicenseType  string `json:"licenseType"`
	ProgramType  string `json:"programType"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req createRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.slots.Create(ctx, callerID, slotsvc.CreateInput{
		Name:         req.Name,
		Age:          req.Age,
		County:       req.County,
		Constituency: req.Constituency,
		Ward:         req.Ward,
		Story:        req.Story,
		Dream:        req.Dream,
		LicenseType:  slot.LicenseType(req.LicenseType),
		ProgramType:  slot.ProgramType(req.ProgramType),
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeCapacityExceeded) {
			h.logger.WarnContext(ctx, "slot capacity reached", "request_id", middleware.GetRequestID(ctx))
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

type updateRequest struct {
	Name             *string `json:"name"`
	Age              *int    `json:"age"`
	County           *string `json:"county"`
	Constituency     *string `json:"constituency"`
	Ward             *string `json:"ward"`
	Story            *string `json:"story"`
	Dream            *string `json:"dream"`
	LicenseType      *string `json:"licenseType"`
	Status           *string `json:"status"`
	TrainingProgress *int    `json:"trainingProgress"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req updateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	in := slotsvc.UpdateInput{
		Name:             req.Name,
		Age:              req.Age,
		County:           req.County,
		Constituency:     req.Constituency,
		Ward:             req.Ward,
		Story:            req.Story,
		Dream:            req.Dream,
		TrainingProgress: req.TrainingProgress,
	}
	if req.LicenseType != nil {
		lt := slot.LicenseType(*req.LicenseType)
		in.LicenseType = &lt
	}
	if req.Status != nil {
		st := slot.Status(*req.Status)
		in.Status = &st
	}

	updated, err := h.slots.Update(ctx, callerID, chi.URLParam(r, "id"), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}
