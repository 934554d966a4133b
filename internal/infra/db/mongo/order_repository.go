package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	"tourhub/internal/domain/shared/lifecycle"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

type orderDocument struct {
	ID             string          `bson:"_id"`
	VehicleID      string          `bson:"vehicle_id"`
	ProviderID     string          `bson:"provider_id"`
	VehicleName    string          `bson:"vehicle_name"`
	CustomerID     string          `bson:"customer_id"`
	Contact        contactDocument `bson:"contact"`
	Rental         rangeDocument   `bson:"rental"`
	PickupLocation string          `bson:"pickup_location,omitempty"`
	TotalPrice     float64         `bson:"total_price"`
	Status         string          `bson:"status"`
	CreatedAt      int64           `bson:"created_at"`
	UpdatedAt      int64           `bson:"updated_at"`
}

func newOrderDocument(o *domainorder.Order) orderDocument {
	return orderDocument{
		ID:          string(o.ID),
		VehicleID:   string(o.VehicleID),
		ProviderID:  string(o.ProviderID),
		VehicleName: o.VehicleName,
		CustomerID:  o.CustomerID,
		Contact: contactDocument{
			FirstName:   o.Contact.FirstName,
			LastName:    o.Contact.LastName,
			Email:       o.Contact.Email,
			PhoneNumber: o.Contact.PhoneNumber,
		},
		Rental:         newRangeDocument(o.Rental),
		PickupLocation: o.PickupLocation,
		TotalPrice:     o.TotalPrice,
		Status:         string(o.Status),
		CreatedAt:      millis(o.CreatedAt),
		UpdatedAt:      millis(o.UpdatedAt),
	}
}

func (d orderDocument) toAggregate() *domainorder.Order {
	return &domainorder.Order{
		ID:          domainorder.OrderID(d.ID),
		VehicleID:   domainlistings.ListingID(d.VehicleID),
		ProviderID:  domainlistings.ProviderID(d.ProviderID),
		VehicleName: d.VehicleName,
		CustomerID:  d.CustomerID,
		Contact: domainorder.Contact{
			FirstName:   d.Contact.FirstName,
			LastName:    d.Contact.LastName,
			Email:       d.Contact.Email,
			PhoneNumber: d.Contact.PhoneNumber,
		},
		Rental:         d.Rental.toRange(),
		PickupLocation: d.PickupLocation,
		TotalPrice:     d.TotalPrice,
		Status:         lifecycle.Status(d.Status),
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
}

func (r *OrderRepository) ByID(ctx context.Context, id domainorder.OrderID) (*domainorder.Order, error) {
	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainorder.ErrOrderNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OrderRepository) Save(ctx context.Context, order *domainorder.Order) error {
	doc := newOrderDocument(order)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id domainorder.OrderID, status lifecycle.Status, updatedAt time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": statusUpdate(status, updatedAt)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainorder.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id domainorder.OrderID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainorder.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainorder.Order, error) {
	if customerID == "" {
		return []*domainorder.Order{}, nil
	}
	return r.find(ctx, bson.M{"customer_id": customerID})
}

func (r *OrderRepository) ListByProvider(ctx context.Context, providerID domainlistings.ProviderID, status lifecycle.Status) ([]*domainorder.Order, error) {
	return r.find(ctx, ownerFilter("provider_id", string(providerID), status))
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]*domainorder.Order, error) {
	cur, err := r.col.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainorder.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

var _ domainorder.Repository = (*OrderRepository)(nil)
