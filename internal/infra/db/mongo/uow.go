package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"tourhub/internal/app/uow"
	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	domainreviews "tourhub/internal/domain/reviews"
	domainuser "tourhub/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory hands out units over the Mongo repositories. Writes are single
// document operations; there is no cross-collection transaction to commit.
type Factory struct {
	DB *mongo.Database

	HotelsRepo   *HotelRepository
	VehiclesRepo *VehicleRepository
	BookingsRepo *BookingRepository
	OrdersRepo   *OrderRepository
	ReviewsRepo  *ReviewRepository
	UsersRepo    *UserRepository
}

func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:           db,
		HotelsRepo:   NewHotelRepository(db),
		VehiclesRepo: NewVehicleRepository(db),
		BookingsRepo: NewBookingRepository(db),
		OrdersRepo:   NewOrderRepository(db),
		ReviewsRepo:  NewReviewRepository(db),
		UsersRepo:    NewUserRepository(db),
	}
}

func (f Factory) Begin(_ context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
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
