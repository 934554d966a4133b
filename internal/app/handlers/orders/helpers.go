package orders

import (
	"context"
	"errors"

	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainorder "tourhub/internal/domain/order"
	"tourhub/internal/domain/shared/apperr"
)

func loadOrder(ctx context.Context, unit uow.UnitOfWork, id string) (*domainorder.Order, error) {
	order, err := unit.Orders().ByID(ctx, domainorder.OrderID(id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func notFound(err error) error {
	if errors.Is(err, domainorder.ErrOrderNotFound) {
		return apperr.NotFound("order not found", err)
	}
	return err
}

func resourceOf(o *domainorder.Order) authz.Resource {
	return authz.Resource{CustomerID: o.CustomerID, ProviderID: o.ProviderID}
}
