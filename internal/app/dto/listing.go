package dto

import (
	"time"

	domainlistings "tourhub/internal/domain/listings"
)

type Room struct {
	Type        string  `json:"type" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Capacity    int     `json:"capacity" validate:"gte=0"`
	Description string  `json:"description,omitempty"`
}

type HotelRequest struct {
	Name        string   `json:"name" validate:"required"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
	Rooms       []Room   `json:"rooms" validate:"dive"`
}

type Hotel struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"providerId"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Amenities   []string  `json:"amenities"`
	Rooms       []Room    `json:"rooms"`
	Photos      []string  `json:"photos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type VehicleRequest struct {
	Make        string  `json:"make" validate:"required"`
	Model       string  `json:"model" validate:"required"`
	Type        string  `json:"type"`
	Seats       int     `json:"seats" validate:"gte=0"`
	PricePerDay float64 `json:"pricePerDay" validate:"gt=0"`
	Location    string  `json:"location"`
}

type AvailabilityWindow struct {
	OrderID   string    `json:"orderId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Vehicle struct {
	ID           string               `json:"id"`
	ProviderID   string               `json:"providerId"`
	Make         string               `json:"make"`
	Model        string               `json:"model"`
	Type         string               `json:"type"`
	Seats        int                  `json:"seats"`
	PricePerDay  float64              `json:"pricePerDay"`
	Location     string               `json:"location"`
	Photos       []string             `json:"photos"`
	Availability []AvailabilityWindow `json:"availability"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type HotelCollection struct {
	Items []Hotel `json:"items"`
}

type VehicleCollection struct {
	Items []Vehicle `json:"items"`
}

type PhotoUploadResult struct {
	ListingID string   `json:"listingId"`
	Photos    []string `json:"photos"`
}

func MapHotel(h *domainlistings.Hotel) Hotel {
	rooms := make([]Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rooms = append(rooms, Room{Type: r.Type, Price: r.Price, Capacity: r.Capacity, Description: r.Description})
	}
	return Hotel{
		ID:          string(h.ID),
		ProviderID:  string(h.ProviderID),
		Name:        h.Name,
		Location:    h.Location,
		Description: h.Description,
		Amenities:   append([]string{}, h.Amenities...),
		Rooms:       rooms,
		Photos:      append([]string{}, h.Photos...),
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func MapVehicle(v *domainlistings.Vehicle) Vehicle {
	windows := make([]AvailabilityWindow, 0, len(v.Availability))
	for _, w := range v.Availability {
		windows = append(windows, AvailabilityWindow{OrderID: w.OrderID, StartDate: w.Range.Start, EndDate: w.Range.End})
	}
	return Vehicle{
		ID:           string(v.ID),
		ProviderID:   string(v.ProviderID),
		Make:         v.Make,
		Model:        v.Model,
		Type:         v.Type,
		Seats:        v.Seats,
		PricePerDay:  v.PricePerDay,
		Location:     v.Location,
		Photos:       append([]string{}, v.Photos...),
		Availability: windows,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func (r HotelRequest) DomainRooms() []domainlistings.Room {
	out := make([]domainlistings.Room, 0, len(r.Rooms))
	for _, room := range r.Rooms {
		out = append(out, domainlistings.Room{Type: room.Type, Price: room.Price, Capacity: room.Capacity, Description: room.Description})
	}
	return out
}
