package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	statssvc "harambee/internal/stats/service"
	"harambee/pkg/platform/httputil"
)

// Service defines the stats operation the handler needs.
type Service interface {
	Summary(ctx context.Context) (*statssvc.Stats, error)
}

// Handler exposes the public impact summary.
type Handler struct {
	stats  Service
	logger *slog.Logger
}

func New(stats Service, logger *slog.Logger) *Handler {
	return &Handler{stats: stats, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/stats", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to gather stats", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
