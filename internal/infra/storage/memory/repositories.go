package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	domainreviews "tourhub/internal/domain/reviews"
	"tourhub/internal/domain/shared/events"
	"tourhub/internal/domain/shared/lifecycle"
)

// Repositories hand out copies so callers only change stored state through Save.

type HotelRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Hotel
}

func NewHotelRepository() *HotelRepository {
	return &HotelRepository{items: make(map[domainlistings.ListingID]*domainlistings.Hotel)}
}

func (r *HotelRepository) ByID(_ context.Context, id domainlistings.ListingID) (*domainlistings.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hotel, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrHotelNotFound
	}
	return cloneHotel(hotel), nil
}

func (r *HotelRepository) Save(_ context.Context, hotel *domainlistings.Hotel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[hotel.ID] = cloneHotel(hotel)
	return nil
}

func (r *HotelRepository) Delete(_ context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrHotelNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *HotelRepository) List(_ context.Context, filter domainlistings.Filter) ([]*domainlistings.Hotel, error) {
	filter = filter.Normalized()
	r.mu.RLock()
	out := make([]*domainlistings.Hotel, 0, len(r.items))
	for _, h := range r.items {
		if filter.ProviderID != "" && h.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(h.Location), strings.ToLower(filter.Location)) {
			continue
		}
		out = append(out, cloneHotel(h))
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter), nil
}

func (r *HotelRepository) ResolveReferences(_ context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]*domainlistings.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domainlistings.ListingID]*domainlistings.Hotel, len(ids))
	for _, id := range ids {
		if h, ok := r.items[id]; ok {
			out[id] = cloneHotel(h)
		}
	}
	return out, nil
}

type VehicleRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Vehicle
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{items: make(map[domainlistings.ListingID]*domainlistings.Vehicle)}
}

func (r *VehicleRepository) ByID(_ context.Context, id domainlistings.ListingID) (*domainlistings.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrVehicleNotFound
	}
	return cloneVehicle(v), nil
}

func (r *VehicleRepository) Save(_ context.Context, vehicle *domainlistings.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[vehicle.ID] = cloneVehicle(vehicle)
	return nil
}

func (r *VehicleRepository) Delete(_ context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrVehicleNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *VehicleRepository) List(_ context.Context, filter domainlistings.Filter) ([]*domainlistings.Vehicle, error) {
	filter = filter.Normalized()
	r.mu.RLock()
	out := make([]*domainlistings.Vehicle, 0, len(r.items))
	for _, v := range r.items {
		if filter.ProviderID != "" && v.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(v.Location), strings.ToLower(filter.Location)) {
			continue
		}
		out = append(out, cloneVehicle(v))
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter), nil
}

func (r *VehicleRepository) ResolveReferences(_ context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]*domainlistings.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domainlistings.ListingID]*domainlistings.Vehicle, len(ids))
	for _, id := range ids {
		if v, ok := r.items[id]; ok {
			out[id] = cloneVehicle(v)
		}
	}
	return out, nil
}

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(_ context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(_ context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *BookingRepository) UpdateStatus(_ context.Context, id domainbooking.BookingID, status lifecycle.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return domainbooking.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = updatedAt.UTC()
	return nil
}

func (r *BookingRepository) MarkPaid(_ context.Context, id domainbooking.BookingID, intentID string, status lifecycle.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return domainbooking.ErrBookingNotFound
	}
	b.PaymentStatus = domainbooking.PaymentCompleted
	b.PaymentIntentID = intentID
	b.Status = status
	b.UpdatedAt = updatedAt.UTC()
	return nil
}

func (r *BookingRepository) Delete(_ context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrBookingNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) ListByCustomer(_ context.Context, customerID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return customerID != "" && b.CustomerID == customerID }), nil
}

func (r *BookingRepository) ListByProvider(_ context.Context, providerID domainlistings.ProviderID, status lifecycle.Status) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool {
		return b.ProviderID == providerID && (status == "" || b.Status == status)
	}), nil
}

func (r *BookingRepository) ListByHotelRoom(_ context.Context, hotelID domainlistings.ListingID, roomIndex int) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.HotelID == hotelID && b.RoomIndex == roomIndex }), nil
}

func (r *BookingRepository) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type OrderRepository struct {
	mu    sync.RWMutex
	items map[domainorder.OrderID]*domainorder.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{items: make(map[domainorder.OrderID]*domainorder.Order)}
}

func (r *OrderRepository) ByID(_ context.Context, id domainorder.OrderID) (*domainorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, domainorder.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) Save(_ context.Context, order *domainorder.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id domainorder.OrderID, status lifecycle.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return domainorder.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt.UTC()
	return nil
}

func (r *OrderRepository) Delete(_ context.Context, id domainorder.OrderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainorder.ErrOrderNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *OrderRepository) ListByCustomer(_ context.Context, customerID string) ([]*domainorder.Order, error) {
	return r.filter(func(o *domainorder.Order) bool { return customerID != "" && o.CustomerID == customerID }), nil
}

func (r *OrderRepository) ListByProvider(_ context.Context, providerID domainlistings.ProviderID, status lifecycle.Status) ([]*domainorder.Order, error) {
	return r.filter(func(o *domainorder.Order) bool {
		return o.ProviderID == providerID && (status == "" || o.Status == status)
	}), nil
}

func (r *OrderRepository) filter(keep func(*domainorder.Order) bool) []*domainorder.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainorder.Order, 0)
	for _, o := range r.items {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ReviewRepository keys reviews by booking id, which keeps one review per booking.
type ReviewRepository struct {
	mu        sync.RWMutex
	byBooking map[string]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{byBooking: make(map[string]*domainreviews.Review)}
}

func (r *ReviewRepository) ByBooking(_ context.Context, bookingID string) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	cp := *review
	cp.Recorder = events.Recorder{}
	return &cp, nil
}

func (r *ReviewRepository) Create(_ context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byBooking[review.BookingID]; exists {
		return domainreviews.ErrDuplicate
	}
	cp := *review
	cp.Recorder = events.Recorder{}
	r.byBooking[review.BookingID] = &cp
	return nil
}

func (r *ReviewRepository) ListByListing(_ context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	out := make([]*domainreviews.Review, 0)
	for _, review := range r.byBooking {
		if review.ListingID == listingID {
			cp := *review
			cp.Recorder = events.Recorder{}
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > 0 {
		if offset >= len(out) {
			return []*domainreviews.Review{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func page[T any](items []T, filter domainlistings.Filter) []T {
	if filter.Offset >= len(items) {
		return []T{}
	}
	items = items[filter.Offset:]
	if filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items
}

func cloneHotel(h *domainlistings.Hotel) *domainlistings.Hotel {
	cp := *h
	cp.Recorder = events.Recorder{}
	cp.Rooms = append([]domainlistings.Room(nil), h.Rooms...)
	cp.Photos = append([]string(nil), h.Photos...)
	cp.Amenities = append([]string(nil), h.Amenities...)
	return &cp
}

func cloneVehicle(v *domainlistings.Vehicle) *domainlistings.Vehicle {
	cp := *v
	cp.Recorder = events.Recorder{}
	cp.Photos = append([]string(nil), v.Photos...)
	cp.Availability = append([]domainlistings.AvailabilityWindow(nil), v.Availability...)
	return &cp
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.Recorder = events.Recorder{}
	return &cp
}

func cloneOrder(o *domainorder.Order) *domainorder.Order {
	cp := *o
	cp.Recorder = events.Recorder{}
	return &cp
}
