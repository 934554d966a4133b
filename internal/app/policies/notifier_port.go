package policies

import "context"

// Mailer hands a verification code to whatever delivers email.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}
