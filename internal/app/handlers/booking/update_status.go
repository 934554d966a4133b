package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/outbox"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainbooking "tourhub/internal/domain/booking"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/lifecycle"
)

const updateBookingStatusKey = "booking.status.update"

type UpdateBookingStatusCommand struct {
	BookingID string `json:"bookingId" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Actor     authz.Actor
}

func (c UpdateBookingStatusCommand) Key() string { return updateBookingStatusKey }

// UpdateBookingStatusHandler applies provider accept, complete and cancel
// actions. Only the status is written, last write wins.
type UpdateBookingStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UpdateBookingStatusHandler) Handle(ctx context.Context, cmd UpdateBookingStatusCommand) (dto.Booking, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	defer unit.Close(ctx)

	status, err := lifecycle.Parse(cmd.Status)
	if err != nil {
		return dto.Booking{}, apperr.Validation("unknown status", apperr.FieldError{Field: "status", Message: "must be one of: pending accepted completed cancelled"})
	}

	booking, err := loadBooking(ctx, unit, cmd.BookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	if !cmd.Actor.Can(authz.ManageBooking, resourceOf(booking)) {
		return dto.Booking{}, apperr.Authorization("not allowed to manage this booking")
	}

	previous := booking.Status
	if err := booking.SetStatus(status, support.Now(h.Now)); err != nil {
		switch {
		case errors.Is(err, domainbooking.ErrConfirmedByPayment):
			return dto.Booking{}, apperr.Validation("confirmed status is set by payment confirmation",
				apperr.FieldError{Field: "status", Message: "cannot be set to confirmed directly"})
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			return dto.Booking{}, apperr.State("cannot change booking from "+string(previous)+" to "+string(status), err)
		}
		return dto.Booking{}, err
	}

	if previous == booking.Status {
		return dto.MapBooking(booking, nil), nil
	}

	if err := unit.Bookings().UpdateStatus(ctx, booking.ID, booking.Status, booking.UpdatedAt); err != nil {
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			return dto.Booking{}, apperr.NotFound("booking not found", err)
		}
		return dto.Booking{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return dto.Booking{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Booking{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking status changed", "booking_id", booking.ID, "from", previous, "to", booking.Status)
	}
	return dto.MapBooking(booking, nil), nil
}

var _ commands.Handler[UpdateBookingStatusCommand, dto.Booking] = (*UpdateBookingStatusHandler)(nil)
