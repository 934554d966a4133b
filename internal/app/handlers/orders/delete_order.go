package orders

import (
	"context"
	"log/slog"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	"tourhub/internal/domain/shared/apperr"
)

const deleteOrderKey = "order.delete"

type DeleteOrderCommand struct {
	OrderID string `json:"orderId" validate:"required"`
	Actor   authz.Actor
}

func (c DeleteOrderCommand) Key() string { return deleteOrderKey }

// DeleteOrderHandler removes the order only; reserved vehicle windows stay.
type DeleteOrderHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *DeleteOrderHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) (dto.Order, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Order{}, err
	}
	defer unit.Close(ctx)

	order, err := loadOrder(ctx, unit, cmd.OrderID)
	if err != nil {
		return dto.Order{}, err
	}
	if !cmd.Actor.Can(authz.DeleteOrder, resourceOf(order)) {
		return dto.Order{}, apperr.Authorization("not allowed to delete this order")
	}
	if err := unit.Orders().Delete(ctx, order.ID); err != nil {
		return dto.Order{}, notFound(err)
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Order{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("order deleted", "order_id", order.ID, "status", order.Status)
	}
	return dto.MapOrder(order, nil), nil
}

var _ commands.Handler[DeleteOrderCommand, dto.Order] = (*DeleteOrderHandler)(nil)
