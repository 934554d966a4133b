package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourhub/internal/domain/shared/daterange"
	"tourhub/internal/domain/shared/events"
)

var (
	ErrNameRequired     = errors.New("listings: name is required")
	ErrProviderRequired = errors.New("listings: provider is required")
	ErrRoomInvalid      = errors.New("listings: room type and a positive price are required")
	ErrPricePerDay      = errors.New("listings: price per day must be positive")
	ErrHotelNotFound    = errors.New("listings: hotel not found")
	ErrVehicleNotFound  = errors.New("listings: vehicle not found")
)

type ListingID string
type ProviderID string

// Room is addressed by its position in Hotel.Rooms.
type Room struct {
	Type        string
	Price       float64
	Capacity    int
	Description string
}

// Complete reports whether the room carries the fields a booking denormalizes.
func (r Room) Complete() bool {
	return strings.TrimSpace(r.Type) != "" && r.Price > 0
}

type Hotel struct {
	ID          ListingID
	ProviderID  ProviderID
	Name        string
	Location    string
	Description string
	Amenities   []string
	Rooms       []Room
	Photos      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.Recorder
}

type HotelParams struct {
	ID          ListingID
	ProviderID  ProviderID
	Name        string
	Location    string
	Description string
	Amenities   []string
	Rooms       []Room
	Now         time.Time
}

func NewHotel(params HotelParams) (*Hotel, error) {
	if strings.TrimSpace(string(params.ProviderID)) == "" {
		return nil, ErrProviderRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if err := validateRooms(params.Rooms); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	h := &Hotel{
		ID:          params.ID,
		ProviderID:  params.ProviderID,
		Name:        strings.TrimSpace(params.Name),
		Location:    strings.TrimSpace(params.Location),
		Description: strings.TrimSpace(params.Description),
		Amenities:   append([]string(nil), params.Amenities...),
		Rooms:       append([]Room(nil), params.Rooms...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	h.Record(ListingCreated{ListingID: h.ID, ProviderID: h.ProviderID, Kind: "hotel", At: now})
	return h, nil
}

// Update replaces the editable fields. Rooms are replaced wholesale; bookings
// keep their own copy of the room type and price.
func (h *Hotel) Update(params HotelParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return ErrNameRequired
	}
	if err := validateRooms(params.Rooms); err != nil {
		return err
	}
	h.Name = strings.TrimSpace(params.Name)
	h.Location = strings.TrimSpace(params.Location)
	h.Description = strings.TrimSpace(params.Description)
	h.Amenities = append([]string(nil), params.Amenities...)
	h.Rooms = append([]Room(nil), params.Rooms...)
	h.UpdatedAt = params.Now.UTC()
	h.Record(ListingUpdated{ListingID: h.ID, At: h.UpdatedAt})
	return nil
}

// Room returns the room at index, or false when index is out of bounds.
func (h *Hotel) Room(index int) (Room, bool) {
	if index < 0 || index >= len(h.Rooms) {
		return Room{}, false
	}
	return h.Rooms[index], true
}

func (h *Hotel) AddPhoto(url string, now time.Time) {
	h.Photos = append(h.Photos, url)
	h.UpdatedAt = now.UTC()
}

func validateRooms(rooms []Room) error {
	for _, room := range rooms {
		if !room.Complete() {
			return ErrRoomInvalid
		}
	}
	return nil
}

// AvailabilityWindow is a reserved period appended when an order is confirmed.
type AvailabilityWindow struct {
	OrderID string
	Range   daterange.DateRange
}

type Vehicle struct {
	ID           ListingID
	ProviderID   ProviderID
	Make         string
	Model        string
	Type         string
	Seats        int
	PricePerDay  float64
	Location     string
	Photos       []string
	Availability []AvailabilityWindow
	CreatedAt    time.Time
	UpdatedAt    time.Time
	events.Recorder
}

type VehicleParams struct {
	ID          ListingID
	ProviderID  ProviderID
	Make        string
	Model       string
	Type        string
	Seats       int
	PricePerDay float64
	Location    string
	Now         time.Time
}

func NewVehicle(params VehicleParams) (*Vehicle, error) {
	if strings.TrimSpace(string(params.ProviderID)) == "" {
		return nil, ErrProviderRequired
	}
	if strings.TrimSpace(params.Make) == "" || strings.TrimSpace(params.Model) == "" {
		return nil, ErrNameRequired
	}
	if params.PricePerDay <= 0 {
		return nil, ErrPricePerDay
	}
	now := params.Now.UTC()
	v := &Vehicle{
		ID:          params.ID,
		ProviderID:  params.ProviderID,
		Make:        strings.TrimSpace(params.Make),
		Model:       strings.TrimSpace(params.Model),
		Type:        strings.TrimSpace(params.Type),
		Seats:       params.Seats,
		PricePerDay: params.PricePerDay,
		Location:    strings.TrimSpace(params.Location),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	v.Record(ListingCreated{ListingID: v.ID, ProviderID: v.ProviderID, Kind: "vehicle", At: now})
	return v, nil
}

func (v *Vehicle) Update(params VehicleParams) error {
	if strings.TrimSpace(params.Make) == "" || strings.TrimSpace(params.Model) == "" {
		return ErrNameRequired
	}
	if params.PricePerDay <= 0 {
		return ErrPricePerDay
	}
	v.Make = strings.TrimSpace(params.Make)
	v.Model = strings.TrimSpace(params.Model)
	v.Type = strings.TrimSpace(params.Type)
	v.Seats = params.Seats
	v.PricePerDay = params.PricePerDay
	v.Location = strings.TrimSpace(params.Location)
	v.UpdatedAt = params.Now.UTC()
	v.Record(ListingUpdated{ListingID: v.ID, At: v.UpdatedAt})
	return nil
}

// Reserve appends a window without looking at existing ones.
func (v *Vehicle) Reserve(orderID string, dr daterange.DateRange, now time.Time) {
	v.Availability = append(v.Availability, AvailabilityWindow{OrderID: orderID, Range: dr})
	v.UpdatedAt = now.UTC()
}

// Release drops the windows appended for orderID.
func (v *Vehicle) Release(orderID string, now time.Time) {
	kept := v.Availability[:0]
	for _, w := range v.Availability {
		if w.OrderID != orderID {
			kept = append(kept, w)
		}
	}
	v.Availability = kept
	v.UpdatedAt = now.UTC()
}

// Conflicts reports whether dr overlaps any reserved window.
func (v *Vehicle) Conflicts(dr daterange.DateRange) bool {
	for _, w := range v.Availability {
		if w.Range.Overlaps(dr) {
			return true
		}
	}
	return false
}

func (v *Vehicle) AddPhoto(url string, now time.Time) {
	v.Photos = append(v.Photos, url)
	v.UpdatedAt = now.UTC()
}

func (v *Vehicle) DisplayName() string {
	return strings.TrimSpace(v.Make + " " + v.Model)
}

type HotelRepository interface {
	ByID(ctx context.Context, id ListingID) (*Hotel, error)
	Save(ctx context.Context, hotel *Hotel) error
	Delete(ctx context.Context, id ListingID) error
	List(ctx context.Context, filter Filter) ([]*Hotel, error)
	// ResolveReferences loads every hotel in ids with a single lookup; missing ids are skipped.
	ResolveReferences(ctx context.Context, ids []ListingID) (map[ListingID]*Hotel, error)
}

type VehicleRepository interface {
	ByID(ctx context.Context, id ListingID) (*Vehicle, error)
	Save(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id ListingID) error
	List(ctx context.Context, filter Filter) ([]*Vehicle, error)
	ResolveReferences(ctx context.Context, ids []ListingID) (map[ListingID]*Vehicle, error)
}

type Filter struct {
	ProviderID ProviderID
	Location   string
	Limit      int
	Offset     int
}

// Normalized clamps paging values.
func (f Filter) Normalized() Filter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Location = strings.TrimSpace(f.Location)
	return f
}

// UniqueIDs removes duplicates and blanks while keeping order.
func UniqueIDs(ids []ListingID) []ListingID {
	seen := make(map[ListingID]struct{}, len(ids))
	out := make([]ListingID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
