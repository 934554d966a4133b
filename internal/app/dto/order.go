package dto

import (
	"time"

	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
)

type CreateOrderRequest struct {
	VehicleID      string   `json:"vehicleId" validate:"required"`
	FirstName      string   `json:"firstName" validate:"required"`
	LastName       string   `json:"lastName" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	PhoneNumber    string   `json:"phoneNumber" validate:"required"`
	PickupDate     string   `json:"pickupDate" validate:"required"`
	DropoffDate    string   `json:"dropoffDate" validate:"required"`
	PickupLocation string   `json:"pickupLocation"`
	TotalPrice     *float64 `json:"totalPrice" validate:"required,gt=0"`
}

type CreateOrderResult struct {
	OrderID    string  `json:"orderId"`
	TotalPrice float64 `json:"totalPrice"`
}

type Order struct {
	ID             string          `json:"id"`
	VehicleID      string          `json:"vehicleId"`
	Vehicle        *ListingSummary `json:"vehicle,omitempty"`
	VehicleName    string          `json:"vehicleName"`
	CustomerID     string          `json:"customerId,omitempty"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phoneNumber"`
	PickupDate     time.Time       `json:"pickupDate"`
	DropoffDate    time.Time       `json:"dropoffDate"`
	PickupLocation string          `json:"pickupLocation,omitempty"`
	TotalPrice     float64         `json:"totalPrice"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type OrderCollection struct {
	Items []Order `json:"items"`
}

func MapOrder(o *domainorder.Order, vehicle *domainlistings.Vehicle) Order {
	out := Order{
		ID:             string(o.ID),
		VehicleID:      string(o.VehicleID),
		VehicleName:    o.VehicleName,
		CustomerID:     o.CustomerID,
		FirstName:      o.Contact.FirstName,
		LastName:       o.Contact.LastName,
		Email:          o.Contact.Email,
		PhoneNumber:    o.Contact.PhoneNumber,
		PickupDate:     o.Rental.Start,
		DropoffDate:    o.Rental.End,
		PickupLocation: o.PickupLocation,
		TotalPrice:     o.TotalPrice,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if vehicle != nil {
		out.Vehicle = &ListingSummary{ID: string(vehicle.ID), Name: vehicle.DisplayName(), Location: vehicle.Location, Photo: firstPhoto(vehicle.Photos)}
	}
	return out
}
