package orders

import (
	"context"
	"strings"

	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/queries"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/lifecycle"
)

const (
	getOrderKey           = "order.get"
	listCustomerOrdersKey = "order.list.customer"
	listProviderOrdersKey = "order.list.provider"
)

type GetOrderQuery struct {
	OrderID string
	Actor   authz.Actor
}

func (q GetOrderQuery) Key() string { return getOrderKey }

type GetOrderHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetOrderHandler) Handle(ctx context.Context, q GetOrderQuery) (dto.Order, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Order{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	order, err := loadOrder(ctx, unit, q.OrderID)
	if err != nil {
		return dto.Order{}, err
	}
	if !q.Actor.Can(authz.ViewOrder, resourceOf(order)) {
		return dto.Order{}, apperr.Authorization("not allowed to view this order")
	}
	vehicles, err := unit.Vehicles().ResolveReferences(ctx, []domainlistings.ListingID{order.VehicleID})
	if err != nil {
		return dto.Order{}, err
	}
	return dto.MapOrder(order, vehicles[order.VehicleID]), nil
}

type ListCustomerOrdersQuery struct {
	Actor authz.Actor
}

func (q ListCustomerOrdersQuery) Key() string { return listCustomerOrdersKey }

type ListCustomerOrdersHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListCustomerOrdersHandler) Handle(ctx context.Context, q ListCustomerOrdersQuery) (dto.OrderCollection, error) {
	if !q.Actor.Authenticated() {
		return dto.OrderCollection{}, apperr.Unauthenticated("authentication required")
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.OrderCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	orders, err := unit.Orders().ListByCustomer(ctx, q.Actor.ID)
	if err != nil {
		return dto.OrderCollection{}, err
	}
	return withVehicles(ctx, unit, orders)
}

type ListProviderOrdersQuery struct {
	Actor  authz.Actor
	Status string
}

func (q ListProviderOrdersQuery) Key() string { return listProviderOrdersKey }

type ListProviderOrdersHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListProviderOrdersHandler) Handle(ctx context.Context, q ListProviderOrdersQuery) (dto.OrderCollection, error) {
	if !q.Actor.IsProvider() && !q.Actor.IsAdmin() {
		return dto.OrderCollection{}, apperr.Authorization("provider role required")
	}
	var status lifecycle.Status
	if raw := strings.TrimSpace(q.Status); raw != "" {
		parsed, err := lifecycle.Parse(raw)
		if err != nil {
			return dto.OrderCollection{}, apperr.Validation("unknown status", apperr.FieldError{Field: "status", Message: "unknown status"})
		}
		status = parsed
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.OrderCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	orders, err := unit.Orders().ListByProvider(ctx, domainlistings.ProviderID(q.Actor.ID), status)
	if err != nil {
		return dto.OrderCollection{}, err
	}
	return withVehicles(ctx, unit, orders)
}

func withVehicles(ctx context.Context, unit uow.UnitOfWork, orders []*domainorder.Order) (dto.OrderCollection, error) {
	ids := make([]domainlistings.ListingID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.VehicleID)
	}
	vehicles, err := unit.Vehicles().ResolveReferences(ctx, domainlistings.UniqueIDs(ids))
	if err != nil {
		return dto.OrderCollection{}, err
	}
	items := make([]dto.Order, 0, len(orders))
	for _, o := range orders {
		items = append(items, dto.MapOrder(o, vehicles[o.VehicleID]))
	}
	return dto.OrderCollection{Items: items}, nil
}

var (
	_ queries.Handler[GetOrderQuery, dto.Order]                     = (*GetOrderHandler)(nil)
	_ queries.Handler[ListCustomerOrdersQuery, dto.OrderCollection] = (*ListCustomerOrdersHandler)(nil)
	_ queries.Handler[ListProviderOrdersQuery, dto.OrderCollection] = (*ListProviderOrdersHandler)(nil)
)
