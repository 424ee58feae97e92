package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/identifier"
	"harambee/pkg/platform/httputil"
)

const accessTokenTTL = 24 * time.Hour

// Service defines the OTP operations the handler needs.
type Service interface {
	IssueChallenge(ctx context.Context, identifier string) (string, error)
	VerifyChallenge(ctx context.Context, identifier, code string) (string, error)
}

// TokenIssuer mints access tokens after a successful verification.
type TokenIssuer interface {
	GenerateAccessToken(userID, role, email string, expiresIn time.Duration) (string, error)
}

// Handler exposes the OTP login endpoints.
type Handler struct {
	otp    Service
	tokens TokenIssuer
	logger *slog.Logger
}

func New(otp Service, tokens TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{otp: otp, tokens: tokens, logger: logger}
}

// Register registers the OTP routes. Both endpoints are unauthenticated:
// they are the way in.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/otp/send", h.handleSend)
	r.Post("/auth/otp/verify", h.handleVerify)
}

type sendRequest struct {
	Identifier string `json:"identifier"`
}

type sendResponse struct {
	ChallengeID string `json:"challengeId"`
	ExpiresIn   int    `json:"expiresIn"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	challengeID, err := h.otp.IssueChallenge(r.Context(), req.Identifier)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(r.Context(), "failed to issue otp challenge",
				"identifier", identifier.Mask(req.Identifier),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, sendResponse{
		ChallengeID: challengeID,
		ExpiresIn:   int((10 * time.Minute).Seconds()),
	})
}

type verifyRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type verifyResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if _, err := h.otp.VerifyChallenge(r.Context(), req.Identifier, req.Code); err != nil {
		httputil.WriteError(w, err)
		return
	}

	email := ""
	if identifier.IsEmail(req.Identifier) {
		email = req.Identifier
	}
	token, err := h.tokens.GenerateAccessToken(req.Identifier, "sponsor", email, accessTokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to mint access token", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to mint access token"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, verifyResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(accessTokenTTL.Seconds()),
	})
}
