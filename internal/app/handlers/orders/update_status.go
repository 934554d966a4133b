package orders

import (
	"context"
	"errors"
	"fmt"
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
	"tourhub/internal/domain/shared/lifecycle"
)

const updateOrderStatusKey = "order.status.update"

type UpdateOrderStatusCommand struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
	Actor   authz.Actor
}

func (c UpdateOrderStatusCommand) Key() string { return updateOrderStatusKey }

// UpdateOrderStatusHandler moves an order along pending, confirmed, completed.
// Confirming appends the rental window to the vehicle; when that write fails
// its previous status is written back.
type UpdateOrderStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UpdateOrderStatusHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) (dto.Order, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Order{}, err
	}
	defer unit.Close(ctx)

	status, err := lifecycle.Parse(cmd.Status)
	if err != nil {
		return dto.Order{}, apperr.Validation("unknown status", apperr.FieldError{Field: "status", Message: "must be one of: pending confirmed completed cancelled"})
	}
	order, err := loadOrder(ctx, unit, cmd.OrderID)
	if err != nil {
		return dto.Order{}, err
	}
	if !cmd.Actor.Can(authz.ManageOrder, resourceOf(order)) {
		return dto.Order{}, apperr.Authorization("not allowed to manage this order")
	}

	now := support.Now(h.Now)
	previous, err := order.SetStatus(status, now)
	if err != nil {
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			return dto.Order{}, apperr.State("cannot change order from "+string(previous)+" to "+string(status), err)
		}
		return dto.Order{}, err
	}
	if previous == order.Status {
		return dto.MapOrder(order, nil), nil
	}

	if err := unit.Orders().UpdateStatus(ctx, order.ID, order.Status, order.UpdatedAt); err != nil {
		if errors.Is(err, domainorder.ErrOrderNotFound) {
			return dto.Order{}, apperr.NotFound("order not found", err)
		}
		return dto.Order{}, err
	}

	if order.Status == lifecycle.Confirmed {
		if err := h.reserve(ctx, unit, order.VehicleID, string(order.ID), order.Rental, now); err != nil {
			order.Revert(previous, now)
			if rbErr := unit.Orders().UpdateStatus(ctx, order.ID, order.Status, order.UpdatedAt); rbErr != nil {
				if h.Logger != nil {
					h.Logger.Error("order status compensation failed", "order_id", order.ID, "error", rbErr)
				}
				return dto.Order{}, errors.Join(err, fmt.Errorf("restore order status: %w", rbErr))
			}
			if h.Logger != nil {
				h.Logger.Warn("vehicle reservation failed, order status restored", "order_id", order.ID, "status", previous, "error", err)
			}
			return dto.Order{}, err
		}
	}

	if err := outbox.Record(ctx, h.Outbox, h.Encoder, order); err != nil {
		return dto.Order{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Order{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("order status changed", "order_id", order.ID, "from", previous, "to", order.Status)
	}
	return dto.MapOrder(order, nil), nil
}

// reserve appends the window without consulting existing ones.
func (h *UpdateOrderStatusHandler) reserve(ctx context.Context, unit uow.UnitOfWork, vehicleID domainlistings.ListingID, orderID string, rental daterange.DateRange, now time.Time) error {
	vehicle, err := unit.Vehicles().ByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, domainlistings.ErrVehicleNotFound) {
			return apperr.NotFound("vehicle not found", err)
		}
		return err
	}
	vehicle.Reserve(orderID, rental, now)
	return unit.Vehicles().Save(ctx, vehicle)
}

var _ commands.Handler[UpdateOrderStatusCommand, dto.Order] = (*UpdateOrderStatusHandler)(nil)
