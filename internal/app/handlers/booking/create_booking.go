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
	domainlistings "tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/daterange"
	"tourhub/internal/domain/shared/lifecycle"
	"tourhub/internal/domain/shared/money"
)

const createBookingKey = "booking.create"

// CreateBookingCommand books a hotel room. Actor is Anonymous for guest bookings.
type CreateBookingCommand struct {
	dto.CreateBookingRequest
	Actor authz.Actor
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
	// EnforceAvailability rejects stays overlapping a live booking of the same room.
	EnforceAvailability bool
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (dto.CreateBookingResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CreateBookingResult{}, err
	}
	defer unit.Close(ctx)

	if cmd.RoomIndex == nil || cmd.TotalPrice == nil {
		return dto.CreateBookingResult{}, apperr.Validation("validation failed", missingFields(cmd.CreateBookingRequest)...)
	}
	checkIn, checkOut, err := support.ParseDates("checkInDate", cmd.CheckInDate, "checkOutDate", cmd.CheckOutDate)
	if err != nil {
		return dto.CreateBookingResult{}, err
	}

	hotel, err := unit.Hotels().ByID(ctx, domainlistings.ListingID(cmd.HotelID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrHotelNotFound) {
			return dto.CreateBookingResult{}, apperr.NotFound("listing not found", err)
		}
		return dto.CreateBookingResult{}, err
	}

	roomIndex := *cmd.RoomIndex
	room, ok := hotel.Room(roomIndex)
	if !ok {
		return dto.CreateBookingResult{}, apperr.Validation("invalid room index", apperr.FieldError{Field: "roomIndex", Message: "invalid room index"})
	}
	if !room.Complete() {
		return dto.CreateBookingResult{}, apperr.DataIntegrity("room type or price missing", domainlistings.ErrRoomInvalid)
	}

	stay, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return dto.CreateBookingResult{}, apperr.Validation("check-out date must be after check-in date",
			apperr.FieldError{Field: "checkOutDate", Message: "must be after checkInDate"})
	}

	declared := *cmd.TotalPrice
	expected := domainbooking.Quote(room.Price, stay)
	if !money.Equal(declared, expected) {
		return dto.CreateBookingResult{}, apperr.PriceMismatch("total price does not match room price for the selected dates")
	}

	if h.EnforceAvailability {
		if err := h.ensureRoomFree(ctx, unit, hotel.ID, roomIndex, stay); err != nil {
			return dto.CreateBookingResult{}, err
		}
	}

	booking := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(support.NewID(h.NewID)),
		Hotel:     hotel,
		RoomIndex: roomIndex,
		Room:      room,
		// Anonymous actors have an empty id, which leaves the booking without an owning customer.
		CustomerID: cmd.Actor.ID,
		Contact: domainbooking.Contact{
			FirstName:   cmd.FirstName,
			LastName:    cmd.LastName,
			Email:       cmd.Email,
			PhoneNumber: cmd.PhoneNumber,
		},
		Stay:            stay,
		SpecialRequests: cmd.SpecialRequests,
		TotalPrice:      declared,
		Now:             support.Now(h.Now),
	})

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return dto.CreateBookingResult{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return dto.CreateBookingResult{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.CreateBookingResult{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking created", "booking_id", booking.ID, "hotel_id", hotel.ID, "room_index", roomIndex, "total_price", declared)
	}
	return dto.CreateBookingResult{BookingID: string(booking.ID), TotalPrice: booking.TotalPrice}, nil
}

func (h *CreateBookingHandler) ensureRoomFree(ctx context.Context, unit uow.UnitOfWork, hotelID domainlistings.ListingID, roomIndex int, stay daterange.DateRange) error {
	existing, err := unit.Bookings().ListByHotelRoom(ctx, hotelID, roomIndex)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if b.Status == lifecycle.Cancelled {
			continue
		}
		if b.Stay.Overlaps(stay) {
			return apperr.Conflict("room is already booked for the selected dates", nil)
		}
	}
	return nil
}

func missingFields(req dto.CreateBookingRequest) []apperr.FieldError {
	var fields []apperr.FieldError
	if req.RoomIndex == nil {
		fields = append(fields, apperr.FieldError{Field: "roomIndex", Message: "is required"})
	}
	if req.TotalPrice == nil {
		fields = append(fields, apperr.FieldError{Field: "totalPrice", Message: "is required"})
	}
	return fields
}

var _ commands.Handler[CreateBookingCommand, dto.CreateBookingResult] = (*CreateBookingHandler)(nil)
