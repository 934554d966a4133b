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
	createVehicleKey = "listings.vehicles.create"
	updateVehicleKey = "listings.vehicles.update"
	deleteVehicleKey = "listings.vehicles.delete"
)

type CreateVehicleCommand struct {
	dto.VehicleRequest
	Actor authz.Actor
}

func (c CreateVehicleCommand) Key() string { return createVehicleKey }

type CreateVehicleHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

func (h *CreateVehicleHandler) Handle(ctx context.Context, cmd CreateVehicleCommand) (dto.Vehicle, error) {
	provider := domainlistings.ProviderID(cmd.Actor.ID)
	if err := authorize(cmd.Actor, provider); err != nil {
		return dto.Vehicle{}, err
	}
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Vehicle{}, err
	}
	defer unit.Close(ctx)

	vehicle, err := domainlistings.NewVehicle(domainlistings.VehicleParams{
		ID:          domainlistings.ListingID(support.NewID(h.NewID)),
		ProviderID:  provider,
		Make:        cmd.Make,
		Model:       cmd.Model,
		Type:        cmd.Type,
		Seats:       cmd.Seats,
		PricePerDay: cmd.PricePerDay,
		Location:    cmd.Location,
		Now:         support.Now(h.Now),
	})
	if err != nil {
		return dto.Vehicle{}, invalid(err)
	}
	if err := unit.Vehicles().Save(ctx, vehicle); err != nil {
		return dto.Vehicle{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, vehicle); err != nil {
		return dto.Vehicle{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Vehicle{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("vehicle created", "listing_id", vehicle.ID, "provider_id", provider)
	}
	return dto.MapVehicle(vehicle), nil
}

type UpdateVehicleCommand struct {
	dto.VehicleRequest
	VehicleID string `validate:"required"`
	Actor     authz.Actor
}

func (c UpdateVehicleCommand) Key() string { return updateVehicleKey }

// UpdateVehicleHandler keeps the reserved availability windows as they are.
type UpdateVehicleHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UpdateVehicleHandler) Handle(ctx context.Context, cmd UpdateVehicleCommand) (dto.Vehicle, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Vehicle{}, err
	}
	defer unit.Close(ctx)

	vehicle, err := loadVehicle(ctx, unit, cmd.VehicleID)
	if err != nil {
		return dto.Vehicle{}, err
	}
	if err := authorize(cmd.Actor, vehicle.ProviderID); err != nil {
		return dto.Vehicle{}, err
	}
	if err := vehicle.Update(domainlistings.VehicleParams{
		Make:        cmd.Make,
		Model:       cmd.Model,
		Type:        cmd.Type,
		Seats:       cmd.Seats,
		PricePerDay: cmd.PricePerDay,
		Location:    cmd.Location,
		Now:         support.Now(h.Now),
	}); err != nil {
		return dto.Vehicle{}, invalid(err)
	}
	if err := unit.Vehicles().Save(ctx, vehicle); err != nil {
		return dto.Vehicle{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, vehicle); err != nil {
		return dto.Vehicle{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Vehicle{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("vehicle updated", "listing_id", vehicle.ID)
	}
	return dto.MapVehicle(vehicle), nil
}

type DeleteVehicleCommand struct {
	VehicleID string `validate:"required"`
	Actor     authz.Actor
}

func (c DeleteVehicleCommand) Key() string { return deleteVehicleKey }

type DeleteVehicleHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *DeleteVehicleHandler) Handle(ctx context.Context, cmd DeleteVehicleCommand) (dto.Vehicle, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Vehicle{}, err
	}
	defer unit.Close(ctx)

	vehicle, err := loadVehicle(ctx, unit, cmd.VehicleID)
	if err != nil {
		return dto.Vehicle{}, err
	}
	if err := authorize(cmd.Actor, vehicle.ProviderID); err != nil {
		return dto.Vehicle{}, err
	}
	if err := unit.Vehicles().Delete(ctx, vehicle.ID); err != nil {
		return dto.Vehicle{}, notFound(err)
	}
	vehicle.Record(domainlistings.ListingDeleted{ListingID: vehicle.ID, At: support.Now(h.Now)})
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, vehicle); err != nil {
		return dto.Vehicle{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Vehicle{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("vehicle deleted", "listing_id", vehicle.ID)
	}
	return dto.MapVehicle(vehicle), nil
}

var (
	_ commands.Handler[CreateVehicleCommand, dto.Vehicle] = (*CreateVehicleHandler)(nil)
	_ commands.Handler[UpdateVehicleCommand, dto.Vehicle] = (*UpdateVehicleHandler)(nil)
	_ commands.Handler[DeleteVehicleCommand, dto.Vehicle] = (*DeleteVehicleHandler)(nil)
)
