package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/policies"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/money"
)

const (
	createIntentKey = "payments.intent.create"

	DefaultMinAmount = 0.50
	DefaultCurrency  = "usd"
)

type CreateIntentCommand struct {
	dto.CreateIntentRequest
	Actor authz.Actor
}

func (c CreateIntentCommand) Key() string { return createIntentKey }

// CreateIntentHandler asks the provider for a charge intent matching the
// booking's stored total. Nothing is persisted locally.
type CreateIntentHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    policies.PaymentGateway
	Currency   string
	MinAmount  float64
	Logger     *slog.Logger
}

func (h *CreateIntentHandler) Handle(ctx context.Context, cmd CreateIntentCommand) (dto.CreateIntentResult, error) {
	if h.Gateway == nil {
		return dto.CreateIntentResult{}, errors.New("payments: gateway not configured")
	}
	if cmd.Amount == nil {
		return dto.CreateIntentResult{}, apperr.Validation("validation failed", apperr.FieldError{Field: "amount", Message: "is required"})
	}
	amount := *cmd.Amount
	if amount < h.minAmount() {
		return dto.CreateIntentResult{}, apperr.Validation("validation failed",
			apperr.FieldError{Field: "amount", Message: fmt.Sprintf("must be at least %.2f", h.minAmount())})
	}

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CreateIntentResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	booking, err := loadBooking(ctx, unit, cmd.BookingID)
	if err != nil {
		return dto.CreateIntentResult{}, err
	}
	if !cmd.Actor.Can(authz.CreatePaymentIntent, resourceOf(booking)) {
		return dto.CreateIntentResult{}, apperr.Authorization("booking does not belong to the current user")
	}
	if !money.Equal(amount, booking.TotalPrice) {
		return dto.CreateIntentResult{}, apperr.PriceMismatch("amount does not match booking total")
	}

	intent, err := h.Gateway.CreateIntent(ctx, policies.IntentRequest{
		AmountMinor: money.MinorUnits(amount),
		Currency:    h.currency(),
		Metadata: map[string]string{
			"booking_id":  string(booking.ID),
			"customer_id": cmd.Actor.ID,
		},
	})
	if err != nil {
		return dto.CreateIntentResult{}, providerError(err)
	}

	if h.Logger != nil {
		h.Logger.Info("payment intent created", "booking_id", booking.ID, "payment_intent_id", intent.ID, "amount_minor", intent.AmountMinor)
	}
	return dto.CreateIntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

func (h *CreateIntentHandler) minAmount() float64 {
	if h.MinAmount > 0 {
		return h.MinAmount
	}
	return DefaultMinAmount
}

func (h *CreateIntentHandler) currency() string {
	if h.Currency != "" {
		return h.Currency
	}
	return DefaultCurrency
}

var _ commands.Handler[CreateIntentCommand, dto.CreateIntentResult] = (*CreateIntentHandler)(nil)
