package booking

import (
	"time"

	"tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/lifecycle"
)

type Created struct {
	BookingID  BookingID
	HotelID    listings.ListingID
	CustomerID string
	RoomType   string
	TotalPrice float64
	At         time.Time
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return string(e.BookingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	BookingID BookingID
	From      lifecycle.Status
	To        lifecycle.Status
	At        time.Time
}

func (e StatusChanged) EventName() string     { return "booking.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type PaymentConfirmed struct {
	BookingID       BookingID
	PaymentIntentID string
	Amount          float64
	At              time.Time
}

func (e PaymentConfirmed) EventName() string     { return "booking.payment_confirmed" }
func (e PaymentConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e PaymentConfirmed) OccurredAt() time.Time { return e.At }

type Deleted struct {
	BookingID BookingID
	At        time.Time
}

func (e Deleted) EventName() string     { return "booking.deleted" }
func (e Deleted) AggregateID() string   { return string(e.BookingID) }
func (e Deleted) OccurredAt() time.Time { return e.At }
