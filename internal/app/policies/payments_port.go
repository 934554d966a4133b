package policies

import (
	"context"
	"errors"
)

// IntentSucceeded is the provider status a confirmed payment must report.
const IntentSucceeded = "succeeded"

var ErrIntentNotFound = errors.New("payments: intent not found")

type IntentRequest struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
	Metadata     map[string]string
}

// PaymentGateway talks to the external payment provider. Calls are made once;
// callers do not retry.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (Intent, error)
}
