package notify

import (
	"context"
	"log/slog"

	"harambee/pkg/identifier"
)

// Sender dispatches a one-time code to an email address or phone number.
// Delivery is fire-and-forget: a send failure never rolls back issuance, the
// user simply requests a resend.
type Sender interface {
	Send(ctx context.Context, recipient, code string) error
}

// LogSender writes codes to the log instead of delivering them; the dev and
// test sender. The recipient is masked, the code is not (that is the point
// in development).
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, recipient, code string) error {
	s.logger.InfoContext(ctx, "sending verification code",
		"recipient", identifier.Mask(recipient),
		"code", code,
	)
	return nil
}
