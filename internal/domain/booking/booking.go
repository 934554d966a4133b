package booking

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

var (
	ErrBookingNotFound    = errors.New("booking: not found")
	ErrConfirmedByPayment = errors.New("booking: confirmed status is set by payment confirmation")
	ErrBookingCancelled   = errors.New("booking: cancelled bookings cannot be paid")
)

type BookingID string

type PaymentStatus string

const (
	PaymentHolding   PaymentStatus = "holding"
	PaymentCompleted PaymentStatus = "completed"
)

// transitions is the hotel booking state machine. Payment confirmation moves a
// booking to confirmed; providers accept, complete or cancel.
var transitions = lifecycle.Machine{
	lifecycle.Pending:   {lifecycle.Accepted, lifecycle.Confirmed, lifecycle.Cancelled},
	lifecycle.Accepted:  {lifecycle.Confirmed, lifecycle.Completed, lifecycle.Cancelled},
	lifecycle.Confirmed: {lifecycle.Completed, lifecycle.Cancelled},
}

type Contact struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

type Booking struct {
	ID              BookingID
	HotelID         listings.ListingID
	ProviderID      listings.ProviderID
	RoomIndex       int
	RoomType        string
	CustomerID      string
	Contact         Contact
	Stay            daterange.DateRange
	SpecialRequests string
	TotalPrice      float64
	Status          lifecycle.Status
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
	ListByCustomer(ctx context.Context, customerID string) ([]*Booking, error)
	ListByProvider(ctx context.Context, providerID listings.ProviderID, status lifecycle.Status) ([]*Booking, error)
	ListByHotelRoom(ctx context.Context, hotelID listings.ListingID, roomIndex int) ([]*Booking, error)
	// UpdateStatus writes only the status. Payment fields are left as stored.
	UpdateStatus(ctx context.Context, id BookingID, status lifecycle.Status, updatedAt time.Time) error
	// MarkPaid writes the payment fields together with the status payment sets.
	MarkPaid(ctx context.Context, id BookingID, intentID string, status lifecycle.Status, updatedAt time.Time) error
}

type CreateParams struct {
	ID              BookingID
	Hotel           *listings.Hotel
	RoomIndex       int
	Room            listings.Room
	CustomerID      string
	Contact         Contact
	Stay            daterange.DateRange
	SpecialRequests string
	TotalPrice      float64
	Now             time.Time
}

// New builds a pending booking with the room type and price copied from the
// listing so later room edits do not change it.
func New(params CreateParams) *Booking {
	now := params.Now.UTC()
	b := &Booking{
		ID:              params.ID,
		HotelID:         params.Hotel.ID,
		ProviderID:      params.Hotel.ProviderID,
		RoomIndex:       params.RoomIndex,
		RoomType:        params.Room.Type,
		CustomerID:      strings.TrimSpace(params.CustomerID),
		Contact:         params.Contact,
		Stay:            params.Stay,
		SpecialRequests: strings.TrimSpace(params.SpecialRequests),
		TotalPrice:      params.TotalPrice,
		Status:          lifecycle.Pending,
		PaymentStatus:   PaymentHolding,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(Created{BookingID: b.ID, HotelID: b.HotelID, CustomerID: b.CustomerID, RoomType: b.RoomType, TotalPrice: b.TotalPrice, At: now})
	return b
}

// Quote prices a stay: nightly rate times started nights.
func Quote(nightly float64, stay daterange.DateRange) float64 {
	return nightly * float64(stay.Days())
}

// SetStatus applies a provider-driven status change.
func (b *Booking) SetStatus(to lifecycle.Status, now time.Time) error {
	if to == lifecycle.Confirmed && b.Status != lifecycle.Confirmed {
		return ErrConfirmedByPayment
	}
	if err := transitions.Check(b.Status, to); err != nil {
		return err
	}
	if b.Status == to {
		return nil
	}
	from := b.Status
	b.Status = to
	b.UpdatedAt = now.UTC()
	b.Record(StatusChanged{BookingID: b.ID, From: from, To: to, At: b.UpdatedAt})
	return nil
}

// ConfirmPayment marks the booking paid. Applying it twice leaves the same state.
// A completed stay keeps its status; only the payment flag changes.
func (b *Booking) ConfirmPayment(intentID string, now time.Time) error {
	if b.Status == lifecycle.Cancelled {
		return ErrBookingCancelled
	}
	if b.PaymentStatus == PaymentCompleted && (b.Status == lifecycle.Confirmed || b.Status == lifecycle.Completed) {
		return nil
	}
	b.PaymentStatus = PaymentCompleted
	b.PaymentIntentID = intentID
	if b.Status != lifecycle.Completed {
		b.Status = lifecycle.Confirmed
	}
	b.UpdatedAt = now.UTC()
	b.Record(PaymentConfirmed{BookingID: b.ID, PaymentIntentID: intentID, Amount: b.TotalPrice, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Reviewable() bool {
	return b.Status == lifecycle.Completed
}
