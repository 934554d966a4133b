package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/outbox"
	"tourhub/internal/app/policies"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainbooking "tourhub/internal/domain/booking"
	"tourhub/internal/domain/shared/apperr"
)

const confirmPaymentKey = "payments.confirm"

// CodePaymentNotSucceeded tags the state error returned for unfinished intents.
const CodePaymentNotSucceeded = "payment_not_succeeded"

type ConfirmPaymentCommand struct {
	dto.ConfirmPaymentRequest
	Actor authz.Actor
}

func (c ConfirmPaymentCommand) Key() string { return confirmPaymentKey }

// ConfirmPaymentHandler marks a booking paid once the provider reports the
// intent as succeeded. Repeating the call rewrites the same state.
type ConfirmPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    policies.PaymentGateway
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (dto.ConfirmPaymentResult, error) {
	if h.Gateway == nil {
		return dto.ConfirmPaymentResult{}, errors.New("payments: gateway not configured")
	}
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ConfirmPaymentResult{}, err
	}
	defer unit.Close(ctx)

	booking, err := loadBooking(ctx, unit, cmd.BookingID)
	if err != nil {
		return dto.ConfirmPaymentResult{}, err
	}
	if !cmd.Actor.Can(authz.ConfirmPayment, resourceOf(booking)) {
		return dto.ConfirmPaymentResult{}, apperr.Authorization("booking does not belong to the current user")
	}

	intent, err := h.Gateway.RetrieveIntent(ctx, cmd.PaymentIntentID)
	if err != nil {
		if errors.Is(err, policies.ErrIntentNotFound) {
			return dto.ConfirmPaymentResult{}, apperr.NotFound("payment intent not found", err)
		}
		return dto.ConfirmPaymentResult{}, providerError(err)
	}
	if intent.Status != policies.IntentSucceeded {
		return dto.ConfirmPaymentResult{}, apperr.State("payment not succeeded", nil).WithCode(CodePaymentNotSucceeded)
	}
	if ref, ok := intent.Metadata["booking_id"]; ok && ref != string(booking.ID) {
		return dto.ConfirmPaymentResult{}, apperr.Authorization("payment intent belongs to another booking")
	}

	if err := booking.ConfirmPayment(intent.ID, support.Now(h.Now)); err != nil {
		if errors.Is(err, domainbooking.ErrBookingCancelled) {
			return dto.ConfirmPaymentResult{}, apperr.State("booking is cancelled", err)
		}
		return dto.ConfirmPaymentResult{}, err
	}
	if err := unit.Bookings().MarkPaid(ctx, booking.ID, booking.PaymentIntentID, booking.Status, booking.UpdatedAt); err != nil {
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			return dto.ConfirmPaymentResult{}, apperr.NotFound("booking not found", err)
		}
		return dto.ConfirmPaymentResult{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return dto.ConfirmPaymentResult{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.ConfirmPaymentResult{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("payment confirmed", "booking_id", booking.ID, "payment_intent_id", intent.ID, "status", booking.Status)
	}
	return dto.ConfirmPaymentResult{Booking: dto.MapBooking(booking, nil)}, nil
}

var _ commands.Handler[ConfirmPaymentCommand, dto.ConfirmPaymentResult] = (*ConfirmPaymentHandler)(nil)
