package mongo

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "tourhub/internal/domain/listings"
)

type HotelRepository struct {
	col *mongo.Collection
}

func NewHotelRepository(db *mongo.Database) *HotelRepository {
	return &HotelRepository{col: db.Collection(hotelsCollection)}
}

type roomDocument struct {
	Type        string  `bson:"type"`
	Price       float64 `bson:"price"`
	Capacity    int     `bson:"capacity"`
	Description string  `bson:"description,omitempty"`
}

type hotelDocument struct {
	ID          string         `bson:"_id"`
	ProviderID  string         `bson:"provider_id"`
	Name        string         `bson:"name"`
	Location    string         `bson:"location"`
	Description string         `bson:"description"`
	Amenities   []string       `bson:"amenities"`
	Rooms       []roomDocument `bson:"rooms"`
	Photos      []string       `bson:"photos"`
	CreatedAt   int64          `bson:"created_at"`
	UpdatedAt   int64          `bson:"updated_at"`
}

func newHotelDocument(h *domainlistings.Hotel) hotelDocument {
	rooms := make([]roomDocument, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rooms = append(rooms, roomDocument{Type: r.Type, Price: r.Price, Capacity: r.Capacity, Description: r.Description})
	}
	return hotelDocument{
		ID:          string(h.ID),
		ProviderID:  string(h.ProviderID),
		Name:        h.Name,
		Location:    h.Location,
		Description: h.Description,
		Amenities:   h.Amenities,
		Rooms:       rooms,
		Photos:      h.Photos,
		CreatedAt:   millis(h.CreatedAt),
		UpdatedAt:   millis(h.UpdatedAt),
	}
}

func (d hotelDocument) toAggregate() *domainlistings.Hotel {
	rooms := make([]domainlistings.Room, 0, len(d.Rooms))
	for _, r := range d.Rooms {
		rooms = append(rooms, domainlistings.Room{Type: r.Type, Price: r.Price, Capacity: r.Capacity, Description: r.Description})
	}
	return &domainlistings.Hotel{
		ID:          domainlistings.ListingID(d.ID),
		ProviderID:  domainlistings.ProviderID(d.ProviderID),
		Name:        d.Name,
		Location:    d.Location,
		Description: d.Description,
		Amenities:   d.Amenities,
		Rooms:       rooms,
		Photos:      d.Photos,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}

func (r *HotelRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Hotel, error) {
	var doc hotelDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrHotelNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *HotelRepository) Save(ctx context.Context, hotel *domainlistings.Hotel) error {
	doc := newHotelDocument(hotel)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *HotelRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrHotelNotFound
	}
	return nil
}

func (r *HotelRepository) List(ctx context.Context, filter domainlistings.Filter) ([]*domainlistings.Hotel, error) {
	filter = filter.Normalized()
	cur, err := r.col.Find(ctx, listingFilter(filter), pageOptions(filter))
	if err != nil {
		return nil, err
	}
	var docs []hotelDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainlistings.Hotel, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

func (r *HotelRepository) ResolveReferences(ctx context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]*domainlistings.Hotel, error) {
	out := make(map[domainlistings.ListingID]*domainlistings.Hotel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		return nil, err
	}
	var docs []hotelDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		h := d.toAggregate()
		out[h.ID] = h
	}
	return out, nil
}

type VehicleRepository struct {
	col *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{col: db.Collection(vehiclesCollection)}
}

type windowDocument struct {
	OrderID string        `bson:"order_id"`
	Range   rangeDocument `bson:"range"`
}

type vehicleDocument struct {
	ID           string           `bson:"_id"`
	ProviderID   string           `bson:"provider_id"`
	Make         string           `bson:"make"`
	Model        string           `bson:"model"`
	Type         string           `bson:"type"`
	Seats        int              `bson:"seats"`
	PricePerDay  float64          `bson:"price_per_day"`
	Location     string           `bson:"location"`
	Photos       []string         `bson:"photos"`
	Availability []windowDocument `bson:"availability"`
	CreatedAt    int64            `bson:"created_at"`
	UpdatedAt    int64            `bson:"updated_at"`
}

func newVehicleDocument(v *domainlistings.Vehicle) vehicleDocument {
	windows := make([]windowDocument, 0, len(v.Availability))
	for _, w := range v.Availability {
		windows = append(windows, windowDocument{OrderID: w.OrderID, Range: newRangeDocument(w.Range)})
	}
	return vehicleDocument{
		ID:           string(v.ID),
		ProviderID:   string(v.ProviderID),
		Make:         v.Make,
		Model:        v.Model,
		Type:         v.Type,
		Seats:        v.Seats,
		PricePerDay:  v.PricePerDay,
		Location:     v.Location,
		Photos:       v.Photos,
		Availability: windows,
		CreatedAt:    millis(v.CreatedAt),
		UpdatedAt:    millis(v.UpdatedAt),
	}
}

func (d vehicleDocument) toAggregate() *domainlistings.Vehicle {
	windows := make([]domainlistings.AvailabilityWindow, 0, len(d.Availability))
	for _, w := range d.Availability {
		windows = append(windows, domainlistings.AvailabilityWindow{OrderID: w.OrderID, Range: w.Range.toRange()})
	}
	return &domainlistings.Vehicle{
		ID:           domainlistings.ListingID(d.ID),
		ProviderID:   domainlistings.ProviderID(d.ProviderID),
		Make:         d.Make,
		Model:        d.Model,
		Type:         d.Type,
		Seats:        d.Seats,
		PricePerDay:  d.PricePerDay,
		Location:     d.Location,
		Photos:       d.Photos,
		Availability: windows,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

func (r *VehicleRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Vehicle, error) {
	var doc vehicleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrVehicleNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VehicleRepository) Save(ctx context.Context, vehicle *domainlistings.Vehicle) error {
	doc := newVehicleDocument(vehicle)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *VehicleRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) List(ctx context.Context, filter domainlistings.Filter) ([]*domainlistings.Vehicle, error) {
	filter = filter.Normalized()
	cur, err := r.col.Find(ctx, listingFilter(filter), pageOptions(filter))
	if err != nil {
		return nil, err
	}
	var docs []vehicleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainlistings.Vehicle, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

func (r *VehicleRepository) ResolveReferences(ctx context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]*domainlistings.Vehicle, error) {
	out := make(map[domainlistings.ListingID]*domainlistings.Vehicle, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		return nil, err
	}
	var docs []vehicleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		v := d.toAggregate()
		out[v.ID] = v
	}
	return out, nil
}

func listingFilter(f domainlistings.Filter) bson.M {
	filter := bson.M{}
	if f.ProviderID != "" {
		filter["provider_id"] = string(f.ProviderID)
	}
	if f.Location != "" {
		filter["location"] = bson.M{"$regex": regexp.QuoteMeta(f.Location), "$options": "i"}
	}
	return filter
}

func pageOptions(f domainlistings.Filter) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(f.Limit)).
		SetSkip(int64(f.Offset))
}

func idStrings(ids []domainlistings.ListingID) []string {
	unique := domainlistings.UniqueIDs(ids)
	out := make([]string, 0, len(unique))
	for _, id := range unique {
		out = append(out, string(id))
	}
	return out
}

var (
	_ domainlistings.HotelRepository   = (*HotelRepository)(nil)
	_ domainlistings.VehicleRepository = (*VehicleRepository)(nil)
)
