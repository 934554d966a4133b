package uow

import (
	"context"

	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	domainreviews "tourhub/internal/domain/reviews"
	domainuser "tourhub/internal/domain/user"
)

// UnitOfWork bundles the repositories one command or query works against.
// Stores without multi-document transactions treat Commit as a no-op; each
// Save is then atomic on its own document only.
type UnitOfWork interface {
	Hotels() domainlistings.HotelRepository
	Vehicles() domainlistings.VehicleRepository
	Bookings() domainbooking.Repository
	Orders() domainorder.Repository
	Reviews() domainreviews.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
