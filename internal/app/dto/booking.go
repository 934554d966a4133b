package dto

import (
	"time"

	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
)

type CreateBookingRequest struct {
	HotelID         string   `json:"hotelId" validate:"required"`
	RoomIndex       *int     `json:"roomIndex" validate:"required,gte=0"`
	FirstName       string   `json:"firstName" validate:"required"`
	LastName        string   `json:"lastName" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	PhoneNumber     string   `json:"phoneNumber" validate:"required"`
	CheckInDate     string   `json:"checkInDate" validate:"required"`
	CheckOutDate    string   `json:"checkOutDate" validate:"required"`
	SpecialRequests string   `json:"specialRequests"`
	TotalPrice      *float64 `json:"totalPrice" validate:"required,gt=0"`
}

type CreateBookingResult struct {
	BookingID  string  `json:"bookingId"`
	TotalPrice float64 `json:"totalPrice"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListingSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Photo    string `json:"photo,omitempty"`
}

type Booking struct {
	ID              string          `json:"id"`
	HotelID         string          `json:"hotelId"`
	Hotel           *ListingSummary `json:"hotel,omitempty"`
	RoomIndex       int             `json:"roomIndex"`
	RoomType        string          `json:"roomType"`
	CustomerID      string          `json:"customerId,omitempty"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	PhoneNumber     string          `json:"phoneNumber"`
	CheckInDate     time.Time       `json:"checkInDate"`
	CheckOutDate    time.Time       `json:"checkOutDate"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
	TotalPrice      float64         `json:"totalPrice"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapBooking(b *domainbooking.Booking, hotel *domainlistings.Hotel) Booking {
	out := Booking{
		ID:              string(b.ID),
		HotelID:         string(b.HotelID),
		RoomIndex:       b.RoomIndex,
		RoomType:        b.RoomType,
		CustomerID:      b.CustomerID,
		FirstName:       b.Contact.FirstName,
		LastName:        b.Contact.LastName,
		Email:           b.Contact.Email,
		PhoneNumber:     b.Contact.PhoneNumber,
		CheckInDate:     b.Stay.Start,
		CheckOutDate:    b.Stay.End,
		SpecialRequests: b.SpecialRequests,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if hotel != nil {
		out.Hotel = &ListingSummary{ID: string(hotel.ID), Name: hotel.Name, Location: hotel.Location, Photo: firstPhoto(hotel.Photos)}
	}
	return out
}

func firstPhoto(photos []string) string {
	if len(photos) == 0 {
		return ""
	}
	return photos[0]
}
