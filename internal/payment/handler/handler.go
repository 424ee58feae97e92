package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"harambee/internal/ledger"
	"harambee/internal/payment/gateway"
	paymentsvc "harambee/internal/payment/service"
	"harambee/internal/platform/middleware"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/httputil"
)

// signatureHeader is the provider's webhook signature header.
const signatureHeader = "Stripe-Signature"

// maxWebhookBytes bounds webhook payloads.
const maxWebhookBytes = 1 << 20

// Service defines the payment operations the handler needs.
type Service interface {
	BeginPayment(ctx context.Context, in paymentsvc.BeginPaymentInput) (*paymentsvc.PaymentIntent, error)
	ApplyGatewayEvent(ctx context.Context, eventType, intentID string) (paymentsvc.ApplyResult, error)
}

// Handler exposes payment initiation and the gateway webhook.
type Handler struct {
	payments      Service
	logger        *slog.Logger
	jwtValidator  middleware.JWTValidator
	webhookSecret string
}

func New(payments Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, webhookSecret string) *Handler {
	return &Handler{
		payments:      payments,
		logger:        logger,
		jwtValidator:  jwtValidator,
		webhookSecret: webhookSecret,
	}
}

func (h *Handler) Register(r chi.Router) {
	// The webhook is authenticated by its signature, not a bearer token.
	r.Post("/payments/webhook", h.handleWebhook)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		pr.Post("/payments/intent", h.handleCreateIntent)
	})
}

type intentRequest struct {
	SlotID      string          `json:"slotId"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Component   string          `json:"component"`
	SponsorName string          `json:"sponsorName"`
}

func (h *Handler) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sponsorID := middleware.GetUserID(ctx)
	if sponsorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req intentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	intent, err := h.payments.BeginPayment(ctx, paymentsvc.BeginPaymentInput{
		SponsorID:   sponsorID,
		SponsorName: req.SponsorName,
		SlotID:      req.SlotID,
		Amount:      req.Amount,
		Kind:        ledger.Kind(req.Kind),
		Component:   ledger.Component(req.Component),
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeGatewayUnavailable) {
			h.logger.ErrorContext(ctx, "payment gateway unavailable",
				"request_id", middleware.GetRequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, intent)
}

// webhookEvent is the subset of the provider's event envelope we read.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

type webhookResponse struct {
	Received bool   `json:"received"`
	Result   string `json:"result"`
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read webhook payload"))
		return
	}

	if err := gateway.VerifySignature(payload, r.Header.Get(signatureHeader), h.webhookSecret,
		gateway.DefaultSignatureTolerance, time.Now()); err != nil {
		h.logger.WarnContext(ctx, "rejected webhook delivery",
			"reason", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		// A retry with the same broken signature will not help.
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid webhook signature"))
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed webhook payload"))
		return
	}

	result, err := h.payments.ApplyGatewayEvent(ctx, event.Type, event.Data.Object.ID)
	if err != nil {
		// Storage failure: signal the gateway to redeliver.
		h.logger.ErrorContext(ctx, "failed to apply gateway event",
			"type", event.Type,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to apply gateway event"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, webhookResponse{Received: true, Result: string(result)})
}
