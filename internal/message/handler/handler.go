package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"harambee/internal/message"
	msgsvc "harambee/internal/message/service"
	"harambee/internal/platform/middleware"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/httputil"
)

// Service defines the message operations the handler needs.
type Service interface {
	Send(ctx context.Context, senderID string, in msgsvc.SendInput) (*message.Message, error)
	ListBySlot(ctx context.Context, slotID string) ([]*message.Message, error)
	MarkRead(ctx context.Context, callerID, id string) (*message.Message, error)
}

// Handler exposes the slot message thread. Everything requires auth; threads
// are not public.
type Handler struct {
	messages     Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(messages Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{messages: messages, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		pr.Post("/messages", h.handleSend)
		pr.Get("/messages/{slotID}", h.handleThread)
		pr.Put("/messages/{id}/read", h.handleMarkRead)
	})
}

type sendRequest struct {
	SlotID     string `json:"slotId"`
	Content    string `json:"content"`
	ReceiverID string `json:"receiverId"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	senderID := middleware.GetUserID(ctx)
	if senderID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req sendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sent, err := h.messages.Send(ctx, senderID, msgsvc.SendInput{
		SlotID:     req.SlotID,
		Content:    req.Content,
		ReceiverID: req.ReceiverID,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sent)
}

func (h *Handler) handleThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.messages.ListBySlot(r.Context(), chi.URLParam(r, "slotID"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list messages", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if thread == nil {
		thread = []*message.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, thread)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	read, err := h.messages.MarkRead(ctx, callerID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, read)
}
