package booking

import (
	"context"
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
)

const deleteBookingKey = "booking.delete"

type DeleteBookingCommand struct {
	BookingID string `json:"bookingId" validate:"required"`
	Actor     authz.Actor
}

func (c DeleteBookingCommand) Key() string { return deleteBookingKey }

// DeleteBookingHandler removes a booking in any status.
type DeleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *DeleteBookingHandler) Handle(ctx context.Context, cmd DeleteBookingCommand) (dto.Booking, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	defer unit.Close(ctx)

	booking, err := loadBooking(ctx, unit, cmd.BookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	if !cmd.Actor.Can(authz.DeleteBooking, resourceOf(booking)) {
		return dto.Booking{}, apperr.Authorization("not allowed to delete this booking")
	}
	if err := unit.Bookings().Delete(ctx, booking.ID); err != nil {
		return dto.Booking{}, notFound(err)
	}

	booking.Record(domainbooking.Deleted{BookingID: booking.ID, At: support.Now(h.Now)})
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return dto.Booking{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Booking{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking deleted", "booking_id", booking.ID, "status", booking.Status)
	}
	return dto.MapBooking(booking, nil), nil
}

var _ commands.Handler[DeleteBookingCommand, dto.Booking] = (*DeleteBookingHandler)(nil)
