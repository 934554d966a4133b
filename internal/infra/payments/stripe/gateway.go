package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"tourhub/internal/app/policies"
)

// Gateway creates and reads Stripe Payment Intents.
type Gateway struct {
	api    *client.API
	logger *slog.Logger
}

// New builds a gateway for secretKey. backends is nil outside tests.
func New(secretKey string, backends *stripe.Backends, logger *slog.Logger) *Gateway {
	return &Gateway{api: client.New(secretKey, backends), logger: logger}
}

func (g *Gateway) CreateIntent(ctx context.Context, req policies.IntentRequest) (policies.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return policies.Intent{}, translate(err)
	}
	if g.logger != nil {
		g.logger.Info("payment intent created", "payment_intent_id", pi.ID, "amount_minor", pi.Amount, "currency", pi.Currency)
	}
	return intentOf(pi), nil
}

func (g *Gateway) RetrieveIntent(ctx context.Context, id string) (policies.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return policies.Intent{}, translate(err)
	}
	return intentOf(pi), nil
}

func intentOf(pi *stripe.PaymentIntent) policies.Intent {
	return policies.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

// translate keeps the provider message so callers can surface it.
func translate(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		if serr.Code == stripe.ErrorCodeResourceMissing {
			return fmt.Errorf("%w: %s", policies.ErrIntentNotFound, serr.Msg)
		}
		if serr.Msg != "" {
			return fmt.Errorf("stripe: %s", serr.Msg)
		}
	}
	return fmt.Errorf("stripe: %w", err)
}

var _ policies.PaymentGateway = (*Gateway)(nil)
