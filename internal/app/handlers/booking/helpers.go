package booking

import (
	"context"
	"errors"

	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainbooking "tourhub/internal/domain/booking"
	"tourhub/internal/domain/shared/apperr"
)

func loadBooking(ctx context.Context, unit uow.UnitOfWork, id string) (*domainbooking.Booking, error) {
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
	if err != nil {
		return nil, notFound(err)
	}
	return booking, nil
}

func notFound(err error) error {
	if errors.Is(err, domainbooking.ErrBookingNotFound) {
		return apperr.NotFound("booking not found", err)
	}
	return err
}

func resourceOf(b *domainbooking.Booking) authz.Resource {
	return authz.Resource{CustomerID: b.CustomerID, ProviderID: b.ProviderID}
}
