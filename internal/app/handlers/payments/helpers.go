package payments

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
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			return nil, apperr.NotFound("booking not found", err)
		}
		return nil, err
	}
	return booking, nil
}

func resourceOf(b *domainbooking.Booking) authz.Resource {
	return authz.Resource{CustomerID: b.CustomerID, ProviderID: b.ProviderID}
}

// providerError keeps already classified errors and wraps the rest.
func providerError(err error) error {
	if _, ok := apperr.KindOf(err); ok {
		return err
	}
	return apperr.ExternalProvider(err.Error(), err)
}
