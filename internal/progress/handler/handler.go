package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"harambee/internal/platform/middleware"
	"harambee/internal/progress"
	progsvc "harambee/internal/progress/service"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/httputil"
)

// Service defines the progress operations the handler needs.
type Service interface {
	Create(ctx context.Context, callerID string, in progsvc.CreateInput) (*progress.Update, error)
	ListBySlot(ctx context.Context, slotID string) ([]*progress.Update, error)
}

// Handler exposes the progress timeline. Reading is public so sponsors can
// follow along; posting is owner-only.
type Handler struct {
	updates      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(updates Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{updates: updates, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/progress/{slotID}", h.handleTimeline)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		pr.Post("/progress", h.handleCreate)
	})
}

type createRequest struct {
	SlotID      string `json:"slotId"`
	Phase       string `json:"phase"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
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

	created, err := h.updates.Create(ctx, callerID, progsvc.CreateInput{
		SlotID:      req.SlotID,
		Phase:       progress.Phase(req.Phase),
		Description: req.Description,
		Progress:    req.Progress,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.updates.ListBySlot(r.Context(), chi.URLParam(r, "slotID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if timeline == nil {
		timeline = []*progress.Update{}
	}
	httputil.WriteJSON(w, http.StatusOK, timeline)
}
