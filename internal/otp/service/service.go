package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"harambee/internal/notify"
	"harambee/internal/otp"
	"harambee/internal/platform/metrics"
	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/identifier"
	"harambee/pkg/platform/sentinel"
)

const sendTimeout = 10 * time.Second

// Service issues and verifies one-time codes gating account creation. It
// never touches user accounts; a successful verification only unblocks the
// caller's registration flow.
type Service struct {
	store   otp.Store
	sender  notify.Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the challenge validity window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store otp.Store, sender notify.Sender, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:   store,
		sender:  sender,
		logger:  logger,
		metrics: m,
		ttl:     otp.TTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// IssueChallenge generates a fresh 6-digit code for the identifier and
// dispatches it. Earlier unexpired codes stay valid; invalidating them on
// resend would break the user who triggers a resend while the first SMS is
// still in flight.
func (s *Service) IssueChallenge(ctx context.Context, ident string) (string, error) {
	if ident == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "identifier (email/phone) is required")
	}

	code, err := generateCode()
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to generate code", err)
	}

	now := s.now()
	challenge := &otp.Challenge{
		ID:         uuid.NewString(),
		Identifier: ident,
		Code:       code,
		ExpiresAt:  now.Add(s.ttl),
		Verified:   false,
		CreatedAt:  now,
	}
	if err := s.store.Create(ctx, challenge); err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to store challenge", err)
	}

	if s.metrics != nil {
		s.metrics.OTPIssued.Inc()
	}

	// Fire-and-forget: delivery failure is logged, not surfaced. The request
	// context may be gone by the time the send finishes, so detach it.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := s.sender.Send(sendCtx, ident, code); err != nil {
			s.logger.Error("otp dispatch failed",
				"identifier", identifier.Mask(ident),
				"error", err,
			)
		}
	}()

	return challenge.ID, nil
}

// VerifyChallenge consumes a live matching challenge. All failure modes
// collapse into one answer so callers cannot probe which codes exist.
func (s *Service) VerifyChallenge(ctx context.Context, ident, code string) (string, error) {
	if ident == "" || code == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "identifier and code are required")
	}

	challenge, err := s.store.Consume(ctx, ident, code, s.now())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) || errors.Is(err, sentinel.ErrAlreadyUsed) {
			if s.metrics != nil {
				s.metrics.OTPVerified.WithLabelValues("rejected").Inc()
			}
			return "", dErrors.New(dErrors.CodeInvalidOrExpired, "invalid or expired code")
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to verify challenge", err)
	}

	if s.metrics != nil {
		s.metrics.OTPVerified.WithLabelValues("verified").Inc()
	}
	s.logger.InfoContext(ctx, "otp verified", "identifier", identifier.Mask(ident))
	return challenge.ID, nil
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
