package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/daterange"
	"tourhub/internal/domain/shared/events"
	"tourhub/internal/domain/shared/lifecycle"
)

var ErrOrderNotFound = errors.New("order: not found")

type OrderID string

// Vehicle orders skip the accepted step: the provider confirms directly.
var transitions = lifecycle.Machine{
	lifecycle.Pending:   {lifecycle.Confirmed, lifecycle.Cancelled},
	lifecycle.Confirmed: {lifecycle.Completed, lifecycle.Cancelled},
}

type Contact struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

type Order struct {
	ID             OrderID
	VehicleID      listings.ListingID
	ProviderID     listings.ProviderID
	VehicleName    string
	CustomerID     string
	Contact        Contact
	Rental         daterange.DateRange
	PickupLocation string
	TotalPrice     float64
	Status         lifecycle.Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id OrderID) (*Order, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id OrderID) error
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	ListByProvider(ctx context.Context, providerID listings.ProviderID, status lifecycle.Status) ([]*Order, error)
	UpdateStatus(ctx context.Context, id OrderID, status lifecycle.Status, updatedAt time.Time) error
}

type CreateParams struct {
	ID             OrderID
	Vehicle        *listings.Vehicle
	CustomerID     string
	Contact        Contact
	Rental         daterange.DateRange
	PickupLocation string
	TotalPrice     float64
	Now            time.Time
}

func New(params CreateParams) *Order {
	now := params.Now.UTC()
	o := &Order{
		ID:             params.ID,
		VehicleID:      params.Vehicle.ID,
		ProviderID:     params.Vehicle.ProviderID,
		VehicleName:    params.Vehicle.DisplayName(),
		CustomerID:     strings.TrimSpace(params.CustomerID),
		Contact:        params.Contact,
		Rental:         params.Rental,
		PickupLocation: strings.TrimSpace(params.PickupLocation),
		TotalPrice:     params.TotalPrice,
		Status:         lifecycle.Pending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	o.Record(Created{OrderID: o.ID, VehicleID: o.VehicleID, CustomerID: o.CustomerID, TotalPrice: o.TotalPrice, At: now})
	return o
}

func Quote(pricePerDay float64, rental daterange.DateRange) float64 {
	return pricePerDay * float64(rental.Days())
}

// SetStatus moves the order along its machine and returns the previous status.
func (o *Order) SetStatus(to lifecycle.Status, now time.Time) (lifecycle.Status, error) {
	from := o.Status
	if err := transitions.Check(from, to); err != nil {
		return from, err
	}
	if from == to {
		return from, nil
	}
	o.Status = to
	o.UpdatedAt = now.UTC()
	o.Record(StatusChanged{OrderID: o.ID, From: from, To: to, At: o.UpdatedAt})
	return from, nil
}

// Revert restores a previous status after a failed follow-up write. It records no event.
func (o *Order) Revert(status lifecycle.Status, now time.Time) {
	o.Status = status
	o.UpdatedAt = now.UTC()
	o.DrainEvents()
}

func (o *Order) Reviewable() bool {
	return o.Status == lifecycle.Completed
}

type Created struct {
	OrderID    OrderID
	VehicleID  listings.ListingID
	CustomerID string
	TotalPrice float64
	At         time.Time
}

func (e Created) EventName() string     { return "order.created" }
func (e Created) AggregateID() string   { return string(e.OrderID) }
func (e Created) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	OrderID OrderID
	From    lifecycle.Status
	To      lifecycle.Status
	At      time.Time
}

func (e StatusChanged) EventName() string     { return "order.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.OrderID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }
