package orders

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
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/daterange"
	"tourhub/internal/domain/shared/money"
)

const createOrderKey = "order.create"

type CreateOrderCommand struct {
	dto.CreateOrderRequest
	Actor authz.Actor
}

func (c CreateOrderCommand) Key() string { return createOrderKey }

type CreateOrderHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
	// EnforceAvailability rejects rentals overlapping the vehicle's reserved windows.
	EnforceAvailability bool
}

func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (dto.CreateOrderResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CreateOrderResult{}, err
	}
	defer unit.Close(ctx)

	if cmd.TotalPrice == nil {
		return dto.CreateOrderResult{}, apperr.Validation("validation failed", apperr.FieldError{Field: "totalPrice", Message: "is required"})
	}
	pickup, dropoff, err := support.ParseDates("pickupDate", cmd.PickupDate, "dropoffDate", cmd.DropoffDate)
	if err != nil {
		return dto.CreateOrderResult{}, err
	}

	vehicle, err := unit.Vehicles().ByID(ctx, domainlistings.ListingID(cmd.VehicleID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrVehicleNotFound) {
			return dto.CreateOrderResult{}, apperr.NotFound("vehicle not found", err)
		}
		return dto.CreateOrderResult{}, err
	}
	if vehicle.PricePerDay <= 0 {
		return dto.CreateOrderResult{}, apperr.DataIntegrity("vehicle price missing", domainlistings.ErrPricePerDay)
	}

	rental, err := daterange.New(pickup, dropoff)
	if err != nil {
		return dto.CreateOrderResult{}, apperr.Validation("drop-off date must be after pick-up date",
			apperr.FieldError{Field: "dropoffDate", Message: "must be after pickupDate"})
	}

	declared := *cmd.TotalPrice
	if !money.Equal(declared, domainorder.Quote(vehicle.PricePerDay, rental)) {
		return dto.CreateOrderResult{}, apperr.PriceMismatch("total price does not match vehicle price for the selected dates")
	}
	if h.EnforceAvailability && vehicle.Conflicts(rental) {
		return dto.CreateOrderResult{}, apperr.Conflict("vehicle is already reserved for the selected dates", nil)
	}

	order := domainorder.New(domainorder.CreateParams{
		ID:         domainorder.OrderID(support.NewID(h.NewID)),
		Vehicle:    vehicle,
		CustomerID: cmd.Actor.ID,
		Contact: domainorder.Contact{
			FirstName:   cmd.FirstName,
			LastName:    cmd.LastName,
			Email:       cmd.Email,
			PhoneNumber: cmd.PhoneNumber,
		},
		Rental:         rental,
		PickupLocation: cmd.PickupLocation,
		TotalPrice:     declared,
		Now:            support.Now(h.Now),
	})
	if err := unit.Orders().Save(ctx, order); err != nil {
		return dto.CreateOrderResult{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, order); err != nil {
		return dto.CreateOrderResult{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.CreateOrderResult{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("order created", "order_id", order.ID, "vehicle_id", vehicle.ID, "total_price", declared)
	}
	return dto.CreateOrderResult{OrderID: string(order.ID), TotalPrice: order.TotalPrice}, nil
}

var _ commands.Handler[CreateOrderCommand, dto.CreateOrderResult] = (*CreateOrderHandler)(nil)
