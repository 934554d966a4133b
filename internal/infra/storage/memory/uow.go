package memory

import (
	"context"
	"errors"

	"tourhub/internal/app/uow"
	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	domainreviews "tourhub/internal/domain/reviews"
	domainuser "tourhub/internal/domain/user"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit of work. No isolation is
// provided; every Save is visible immediately.
type Factory struct {
	HotelsRepo   domainlistings.HotelRepository
	VehiclesRepo domainlistings.VehicleRepository
	BookingsRepo domainbooking.Repository
	OrdersRepo   domainorder.Repository
	ReviewsRepo  domainreviews.Repository
	UsersRepo    domainuser.Repository
}

// NewFactory builds a factory over fresh repositories.
func NewFactory() Factory {
	return Factory{
		HotelsRepo:   NewHotelRepository(),
		VehiclesRepo: NewVehicleRepository(),
		BookingsRepo: NewBookingRepository(),
		OrdersRepo:   NewOrderRepository(),
		ReviewsRepo:  NewReviewRepository(),
		UsersRepo:    NewUserRepository(),
	}
}

func (f Factory) Begin(_ context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	if f.HotelsRepo == nil || f.VehiclesRepo == nil || f.BookingsRepo == nil || f.OrdersRepo == nil || f.ReviewsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

type Unit struct {
	factory Factory
}

func (u *Unit) Hotels() domainlistings.HotelRepository     { return u.factory.HotelsRepo }
func (u *Unit) Vehicles() domainlistings.VehicleRepository { return u.factory.VehiclesRepo }
func (u *Unit) Bookings() domainbooking.Repository         { return u.factory.BookingsRepo }
func (u *Unit) Orders() domainorder.Repository             { return u.factory.OrdersRepo }
func (u *Unit) Reviews() domainreviews.Repository          { return u.factory.ReviewsRepo }
func (u *Unit) Users() domainuser.Repository               { return u.factory.UsersRepo }

func (u *Unit) Commit(context.Context) error   { return nil }
func (u *Unit) Rollback(context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}
