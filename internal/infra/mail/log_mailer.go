// Package mail holds Mailer implementations. Delivery itself belongs to an
// external service; LogMailer only records what would be sent.
package mail

import (
	"context"
	"log/slog"

	"tourhub/internal/app/policies"
)

type LogMailer struct {
	Logger *slog.Logger
	// RevealCodes includes the code in the log line; enable only for local runs.
	RevealCodes bool
}

func (m LogMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if m.Logger == nil {
		return nil
	}
	attrs := []any{"email", email}
	if m.RevealCodes {
		attrs = append(attrs, "code", code)
	}
	m.Logger.InfoContext(ctx, "verification code ready for delivery", attrs...)
	return nil
}

var _ policies.Mailer = LogMailer{}
