package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/lifecycle"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

type bookingDocument struct {
	ID              string          `bson:"_id"`
	HotelID         string          `bson:"hotel_id"`
	ProviderID      string          `bson:"provider_id"`
	RoomIndex       int             `bson:"room_index"`
	RoomType        string          `bson:"room_type"`
	CustomerID      string          `bson:"customer_id"`
	Contact         contactDocument `bson:"contact"`
	Stay            rangeDocument   `bson:"stay"`
	SpecialRequests string          `bson:"special_requests,omitempty"`
	TotalPrice      float64         `bson:"total_price"`
	Status          string          `bson:"status"`
	PaymentStatus   string          `bson:"payment_status,omitempty"`
	PaymentIntentID string          `bson:"payment_intent_id,omitempty"`
	CreatedAt       int64           `bson:"created_at"`
	UpdatedAt       int64           `bson:"updated_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		HotelID:    string(b.HotelID),
		ProviderID: string(b.ProviderID),
		RoomIndex:  b.RoomIndex,
		RoomType:   b.RoomType,
		CustomerID: b.CustomerID,
		Contact: contactDocument{
			FirstName:   b.Contact.FirstName,
			LastName:    b.Contact.LastName,
			Email:       b.Contact.Email,
			PhoneNumber: b.Contact.PhoneNumber,
		},
		Stay:            newRangeDocument(b.Stay),
		SpecialRequests: b.SpecialRequests,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       millis(b.CreatedAt),
		UpdatedAt:       millis(b.UpdatedAt),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		HotelID:    domainlistings.ListingID(d.HotelID),
		ProviderID: domainlistings.ProviderID(d.ProviderID),
		RoomIndex:  d.RoomIndex,
		RoomType:   d.RoomType,
		CustomerID: d.CustomerID,
		Contact: domainbooking.Contact{
			FirstName:   d.Contact.FirstName,
			LastName:    d.Contact.LastName,
			Email:       d.Contact.Email,
			PhoneNumber: d.Contact.PhoneNumber,
		},
		Stay:            d.Stay.toRange(),
		SpecialRequests: d.SpecialRequests,
		TotalPrice:      d.TotalPrice,
		Status:          lifecycle.Status(d.Status),
		PaymentStatus:   domainbooking.PaymentStatus(d.PaymentStatus),
		PaymentIntentID: d.PaymentIntentID,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	doc := newBookingDocument(booking)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// UpdateStatus sets the status alone so a concurrent payment confirmation is kept.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id domainbooking.BookingID, status lifecycle.Status, updatedAt time.Time) error {
	return r.set(ctx, id, statusUpdate(status, updatedAt))
}

func (r *BookingRepository) MarkPaid(ctx context.Context, id domainbooking.BookingID, intentID string, status lifecycle.Status, updatedAt time.Time) error {
	return r.set(ctx, id, bson.M{
		"payment_status":    string(domainbooking.PaymentCompleted),
		"payment_intent_id": intentID,
		"status":            string(status),
		"updated_at":        millis(updatedAt),
	})
}

func (r *BookingRepository) set(ctx context.Context, id domainbooking.BookingID, fields bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainbooking.Booking, error) {
	if customerID == "" {
		return []*domainbooking.Booking{}, nil
	}
	return r.find(ctx, bson.M{"customer_id": customerID})
}

func (r *BookingRepository) ListByProvider(ctx context.Context, providerID domainlistings.ProviderID, status lifecycle.Status) ([]*domainbooking.Booking, error) {
	return r.find(ctx, ownerFilter("provider_id", string(providerID), status))
}

func (r *BookingRepository) ListByHotelRoom(ctx context.Context, hotelID domainlistings.ListingID, roomIndex int) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"hotel_id": string(hotelID), "room_index": roomIndex})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

func ownerFilter(field, id string, status lifecycle.Status) bson.M {
	filter := bson.M{field: id}
	if status != "" {
		filter["status"] = string(status)
	}
	return filter
}

func statusUpdate(status lifecycle.Status, updatedAt time.Time) bson.M {
	return bson.M{"status": string(status), "updated_at": millis(updatedAt)}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
