package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"harambee/internal/ledger"
	"harambee/internal/platform/middleware"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/httputil"
)

// Service defines the ledger reads the handler needs.
type Service interface {
	RankSponsors(ctx context.Context, limit int) ([]ledger.SponsorRank, error)
	ListBySponsor(ctx context.Context, sponsorID string) ([]*ledger.Contribution, error)
}

// Handler exposes the public leaderboard and the caller's own contribution
// history.
type Handler struct {
	ledger       Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(l Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{ledger: l, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/sponsors/rankings", h.handleRankings)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		pr.Get("/my/contributions", h.handleMyContributions)
	})
}

func (h *Handler) handleRankings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	ranks, err := h.ledger.RankSponsors(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to rank sponsors", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if ranks == nil {
		ranks = []ledger.SponsorRank{}
	}
	httputil.WriteJSON(w, http.StatusOK, ranks)
}

func (h *Handler) handleMyContributions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sponsorID := middleware.GetUserID(ctx)
	if sponsorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	rows, err := h.ledger.ListBySponsor(ctx, sponsorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sponsor contributions", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if rows == nil {
		rows = []*ledger.Contribution{}
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}
