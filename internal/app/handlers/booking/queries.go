package booking

import (
	"context"
	"strings"

	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/queries"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/lifecycle"
)

const (
	getBookingKey           = "booking.get"
	listCustomerBookingsKey = "booking.list.customer"
	listProviderBookingsKey = "booking.list.provider"
)

type GetBookingQuery struct {
	BookingID string
	Actor     authz.Actor
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	booking, err := loadBooking(ctx, unit, q.BookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	if !q.Actor.Can(authz.ViewBooking, resourceOf(booking)) {
		return dto.Booking{}, apperr.Authorization("not allowed to view this booking")
	}
	hotels, err := unit.Hotels().ResolveReferences(ctx, []domainlistings.ListingID{booking.HotelID})
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(booking, hotels[booking.HotelID]), nil
}

type ListCustomerBookingsQuery struct {
	Actor authz.Actor
}

func (q ListCustomerBookingsQuery) Key() string { return listCustomerBookingsKey }

type ListCustomerBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListCustomerBookingsHandler) Handle(ctx context.Context, q ListCustomerBookingsQuery) (dto.BookingCollection, error) {
	if !q.Actor.Authenticated() {
		return dto.BookingCollection{}, apperr.Unauthenticated("authentication required")
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByCustomer(ctx, q.Actor.ID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return withHotels(ctx, unit, bookings)
}

type ListProviderBookingsQuery struct {
	Actor  authz.Actor
	Status string
}

func (q ListProviderBookingsQuery) Key() string { return listProviderBookingsKey }

type ListProviderBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListProviderBookingsHandler) Handle(ctx context.Context, q ListProviderBookingsQuery) (dto.BookingCollection, error) {
	if !q.Actor.IsProvider() && !q.Actor.IsAdmin() {
		return dto.BookingCollection{}, apperr.Authorization("provider role required")
	}
	var status lifecycle.Status
	if raw := strings.TrimSpace(q.Status); raw != "" {
		parsed, err := lifecycle.Parse(raw)
		if err != nil {
			return dto.BookingCollection{}, apperr.Validation("unknown status", apperr.FieldError{Field: "status", Message: "unknown status"})
		}
		status = parsed
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByProvider(ctx, domainlistings.ProviderID(q.Actor.ID), status)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return withHotels(ctx, unit, bookings)
}

// withHotels attaches listing summaries with one batched lookup.
func withHotels(ctx context.Context, unit uow.UnitOfWork, bookings []*domainbooking.Booking) (dto.BookingCollection, error) {
	ids := make([]domainlistings.ListingID, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.HotelID)
	}
	hotels, err := unit.Hotels().ResolveReferences(ctx, domainlistings.UniqueIDs(ids))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	items := make([]dto.Booking, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.MapBooking(b, hotels[b.HotelID]))
	}
	return dto.BookingCollection{Items: items}, nil
}

var (
	_ queries.Handler[GetBookingQuery, dto.Booking]                     = (*GetBookingHandler)(nil)
	_ queries.Handler[ListCustomerBookingsQuery, dto.BookingCollection] = (*ListCustomerBookingsHandler)(nil)
	_ queries.Handler[ListProviderBookingsQuery, dto.BookingCollection] = (*ListProviderBookingsHandler)(nil)
)
