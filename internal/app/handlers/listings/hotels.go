package listings

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
	domainlistings "tourhub/internal/domain/listings"
)

const (
	createHotelKey = "listings.hotels.create"
	updateHotelKey = "listings.hotels.update"
	deleteHotelKey = "listings.hotels.delete"
)

type CreateHotelCommand struct {
	dto.HotelRequest
	Actor authz.Actor
}

func (c CreateHotelCommand) Key() string { return createHotelKey }

type CreateHotelHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

func (h *CreateHotelHandler) Handle(ctx context.Context, cmd CreateHotelCommand) (dto.Hotel, error) {
	provider := domainlistings.ProviderID(cmd.Actor.ID)
	if err := authorize(cmd.Actor, provider); err != nil {
		return dto.Hotel{}, err
	}
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Hotel{}, err
	}
	defer unit.Close(ctx)

	hotel, err := domainlistings.NewHotel(domainlistings.HotelParams{
		ID:          domainlistings.ListingID(support.NewID(h.NewID)),
		ProviderID:  provider,
		Name:        cmd.Name,
		Location:    cmd.Location,
		Description: cmd.Description,
		Amenities:   cmd.Amenities,
		Rooms:       cmd.DomainRooms(),
		Now:         support.Now(h.Now),
	})
	if err != nil {
		return dto.Hotel{}, invalid(err)
	}
	if err := unit.Hotels().Save(ctx, hotel); err != nil {
		return dto.Hotel{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, hotel); err != nil {
		return dto.Hotel{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Hotel{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("hotel created", "listing_id", hotel.ID, "provider_id", provider, "rooms", len(hotel.Rooms))
	}
	return dto.MapHotel(hotel), nil
}

type UpdateHotelCommand struct {
	dto.HotelRequest
	HotelID string `validate:"required"`
	Actor   authz.Actor
}

func (c UpdateHotelCommand) Key() string { return updateHotelKey }

// UpdateHotelHandler replaces the editable fields; existing bookings keep
// their room snapshot.
type UpdateHotelHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UpdateHotelHandler) Handle(ctx context.Context, cmd UpdateHotelCommand) (dto.Hotel, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Hotel{}, err
	}
	defer unit.Close(ctx)

	hotel, err := loadHotel(ctx, unit, cmd.HotelID)
	if err != nil {
		return dto.Hotel{}, err
	}
	if err := authorize(cmd.Actor, hotel.ProviderID); err != nil {
		return dto.Hotel{}, err
	}
	if err := hotel.Update(domainlistings.HotelParams{
		Name:        cmd.Name,
		Location:    cmd.Location,
		Description: cmd.Description,
		Amenities:   cmd.Amenities,
		Rooms:       cmd.DomainRooms(),
		Now:         support.Now(h.Now),
	}); err != nil {
		return dto.Hotel{}, invalid(err)
	}
	if err := unit.Hotels().Save(ctx, hotel); err != nil {
		return dto.Hotel{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, hotel); err != nil {
		return dto.Hotel{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Hotel{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("hotel updated", "listing_id", hotel.ID)
	}
	return dto.MapHotel(hotel), nil
}

type DeleteHotelCommand struct {
	HotelID string `validate:"required"`
	Actor   authz.Actor
}

func (c DeleteHotelCommand) Key() string { return deleteHotelKey }

// DeleteHotelHandler leaves bookings against the hotel untouched.
type DeleteHotelHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *DeleteHotelHandler) Handle(ctx context.Context, cmd DeleteHotelCommand) (dto.Hotel, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Hotel{}, err
	}
	defer unit.Close(ctx)

	hotel, err := loadHotel(ctx, unit, cmd.HotelID)
	if err != nil {
		return dto.Hotel{}, err
	}
	if err := authorize(cmd.Actor, hotel.ProviderID); err != nil {
		return dto.Hotel{}, err
	}
	if err := unit.Hotels().Delete(ctx, hotel.ID); err != nil {
		return dto.Hotel{}, notFound(err)
	}
	hotel.Record(domainlistings.ListingDeleted{ListingID: hotel.ID, At: support.Now(h.Now)})
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, hotel); err != nil {
		return dto.Hotel{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Hotel{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("hotel deleted", "listing_id", hotel.ID)
	}
	return dto.MapHotel(hotel), nil
}

var (
	_ commands.Handler[CreateHotelCommand, dto.Hotel] = (*CreateHotelHandler)(nil)
	_ commands.Handler[UpdateHotelCommand, dto.Hotel] = (*UpdateHotelHandler)(nil)
	_ commands.Handler[DeleteHotelCommand, dto.Hotel] = (*DeleteHotelHandler)(nil)
)
