package listings

import (
	"context"
	"errors"

	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainlistings "tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/apperr"
)

func loadHotel(ctx context.Context, unit uow.UnitOfWork, id string) (*domainlistings.Hotel, error) {
	hotel, err := unit.Hotels().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		return nil, notFound(err)
	}
	return hotel, nil
}

func loadVehicle(ctx context.Context, unit uow.UnitOfWork, id string) (*domainlistings.Vehicle, error) {
	vehicle, err := unit.Vehicles().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		return nil, notFound(err)
	}
	return vehicle, nil
}

func notFound(err error) error {
	if errors.Is(err, domainlistings.ErrHotelNotFound) || errors.Is(err, domainlistings.ErrVehicleNotFound) {
		return apperr.NotFound("listing not found", err)
	}
	return err
}

// authorize checks that actor may manage listings owned by provider.
func authorize(actor authz.Actor, provider domainlistings.ProviderID) error {
	if !actor.Authenticated() {
		return apperr.Unauthenticated("authentication required")
	}
	if !actor.Can(authz.ManageListing, authz.Resource{ProviderID: provider}) {
		return apperr.Authorization("not allowed to manage this listing")
	}
	return nil
}

// invalid maps listing invariant violations to validation errors.
func invalid(err error) error {
	switch {
	case errors.Is(err, domainlistings.ErrNameRequired):
		return apperr.Validation("invalid listing", apperr.FieldError{Field: "name", Message: "is required"})
	case errors.Is(err, domainlistings.ErrRoomInvalid):
		return apperr.Validation("invalid listing", apperr.FieldError{Field: "rooms", Message: "each room needs a type and a positive price"})
	case errors.Is(err, domainlistings.ErrPricePerDay):
		return apperr.Validation("invalid listing", apperr.FieldError{Field: "pricePerDay", Message: "must be positive"})
	case errors.Is(err, domainlistings.ErrProviderRequired):
		return apperr.Unauthenticated("authentication required")
	}
	return err
}
