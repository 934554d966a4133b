package listings

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/middleware"
	"tourhub/internal/app/queries"
	"tourhub/internal/app/validation"
	"tourhub/internal/domain/authz"
	domainbooking "tourhub/internal/domain/booking"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/user"
	"tourhub/internal/infra/storage/memory"
)

type uploaderMock struct {
	mock.Mock
}

func (m *uploaderMock) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, reader, contentType)
	return args.String(0), args.Error(1)
}

var (
	provider = authz.Actor{ID: "prov-1", Role: user.RoleProvider}
	rival    = authz.Actor{ID: "prov-2", Role: user.RoleProvider}
	customer = authz.Actor{ID: "cust-1", Role: user.RoleCustomer}
	admin    = authz.Actor{ID: "admin-1", Role: user.RoleAdmin}
)

type fixture struct {
	factory  memory.Factory
	outbox   *memory.Outbox
	uploader *uploaderMock
	cmds     commands.Bus
	qs       queries.Bus
}

func setup(t *testing.T) *fixture {
	t.Helper()
	factory := memory.NewFactory()
	box := memory.NewOutbox(nil)
	uploader := &uploaderMock{}
	now := func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) }
	ids := 0
	newID := func() string {
		ids++
		return "id-" + string(rune('0'+ids))
	}

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[CreateHotelCommand, dto.Hotel](bus, createHotelKey, &CreateHotelHandler{UoWFactory: factory, Outbox: box, Now: now, NewID: newID})
	commands.RegisterHandler[UpdateHotelCommand, dto.Hotel](bus, updateHotelKey, &UpdateHotelHandler{UoWFactory: factory, Outbox: box, Now: now})
	commands.RegisterHandler[DeleteHotelCommand, dto.Hotel](bus, deleteHotelKey, &DeleteHotelHandler{UoWFactory: factory, Outbox: box, Now: now})
	commands.RegisterHandler[CreateVehicleCommand, dto.Vehicle](bus, createVehicleKey, &CreateVehicleHandler{UoWFactory: factory, Outbox: box, Now: now, NewID: newID})
	commands.RegisterHandler[UpdateVehicleCommand, dto.Vehicle](bus, updateVehicleKey, &UpdateVehicleHandler{UoWFactory: factory, Outbox: box, Now: now})
	commands.RegisterHandler[DeleteVehicleCommand, dto.Vehicle](bus, deleteVehicleKey, &DeleteVehicleHandler{UoWFactory: factory, Outbox: box, Now: now})
	commands.RegisterHandler[UploadListingPhotoCommand, dto.PhotoUploadResult](bus, uploadListingPhotoKey, &UploadListingPhotoHandler{UoWFactory: factory, Uploader: uploader, Now: now, NewID: newID})

	qbus := queries.NewInMemoryBus()
	queries.RegisterHandler[GetHotelQuery, dto.Hotel](qbus, getHotelKey, &GetHotelHandler{UoWFactory: factory})
	queries.RegisterHandler[ListHotelsQuery, dto.HotelCollection](qbus, listHotelsKey, &ListHotelsHandler{UoWFactory: factory})
	queries.RegisterHandler[GetVehicleQuery, dto.Vehicle](qbus, getVehicleKey, &GetVehicleHandler{UoWFactory: factory})
	queries.RegisterHandler[ListVehiclesQuery, dto.VehicleCollection](qbus, listVehiclesKey, &ListVehiclesHandler{UoWFactory: factory})

	return &fixture{
		factory:  factory,
		outbox:   box,
		uploader: uploader,
		cmds:     middleware.ChainCommands(bus, middleware.Validation(validation.New()), middleware.OutboxFlush(box), middleware.Transaction(factory)),
		qs:       qbus,
	}
}

func hotelRequest() dto.HotelRequest {
	return dto.HotelRequest{
		Name:     "Harbour View",
		Location: "Lisbon",
		Rooms: []dto.Room{
			{Type: "single", Price: 80, Capacity: 1},
			{Type: "double", Price: 100, Capacity: 2},
		},
	}
}

func (f *fixture) createHotel(t *testing.T, actor authz.Actor) dto.Hotel {
	t.Helper()
	hotel, err := commands.Dispatch[CreateHotelCommand, dto.Hotel](context.Background(), f.cmds, CreateHotelCommand{HotelRequest: hotelRequest(), Actor: actor})
	require.NoError(t, err)
	return hotel
}

func TestCreateHotelRequiresProvider(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	hotel := f.createHotel(t, provider)
	assert.Equal(t, "prov-1", hotel.ProviderID)
	assert.Len(t, hotel.Rooms, 2)

	_, err := commands.Dispatch[CreateHotelCommand, dto.Hotel](ctx, f.cmds, CreateHotelCommand{HotelRequest: hotelRequest(), Actor: customer})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	_, err = commands.Dispatch[CreateHotelCommand, dto.Hotel](ctx, f.cmds, CreateHotelCommand{HotelRequest: hotelRequest(), Actor: authz.Anonymous})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	bad := hotelRequest()
	bad.Rooms[1].Type = ""
	_, err = commands.Dispatch[CreateHotelCommand, dto.Hotel](ctx, f.cmds, CreateHotelCommand{HotelRequest: bad, Actor: provider})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	names := make([]string, 0)
	for _, record := range f.outbox.Published() {
		names = append(names, record.Name)
	}
	assert.Equal(t, []string{"listing.created"}, names)
}

func TestUpdateHotelKeepsBookingSnapshot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	hotel := f.createHotel(t, provider)
	require.NoError(t, f.factory.BookingsRepo.Save(ctx, &domainbooking.Booking{
		ID: "bk-1", HotelID: "id-1", ProviderID: "prov-1", RoomIndex: 1, RoomType: "double", TotalPrice: 300,
	}))

	req := hotelRequest()
	req.Rooms = req.Rooms[:1]
	_, err := commands.Dispatch[UpdateHotelCommand, dto.Hotel](ctx, f.cmds, UpdateHotelCommand{HotelRequest: req, HotelID: hotel.ID, Actor: rival})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	updated, err := commands.Dispatch[UpdateHotelCommand, dto.Hotel](ctx, f.cmds, UpdateHotelCommand{HotelRequest: req, HotelID: hotel.ID, Actor: provider})
	require.NoError(t, err)
	assert.Len(t, updated.Rooms, 1)

	booking, err := f.factory.BookingsRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "double", booking.RoomType)
	assert.Equal(t, 300.0, booking.TotalPrice)
}

func TestDeleteListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	hotel := f.createHotel(t, provider)

	_, err := commands.Dispatch[DeleteHotelCommand, dto.Hotel](ctx, f.cmds, DeleteHotelCommand{HotelID: hotel.ID, Actor: customer})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	_, err = commands.Dispatch[DeleteHotelCommand, dto.Hotel](ctx, f.cmds, DeleteHotelCommand{HotelID: hotel.ID, Actor: admin})
	require.NoError(t, err)

	_, err = queries.Ask[GetHotelQuery, dto.Hotel](ctx, f.qs, GetHotelQuery{HotelID: hotel.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = commands.Dispatch[DeleteHotelCommand, dto.Hotel](ctx, f.cmds, DeleteHotelCommand{HotelID: hotel.ID, Actor: admin})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestVehicleLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := dto.VehicleRequest{Make: "Toyota", Model: "Corolla", Seats: 5, PricePerDay: 45, Location: "Porto"}
	vehicle, err := commands.Dispatch[CreateVehicleCommand, dto.Vehicle](ctx, f.cmds, CreateVehicleCommand{VehicleRequest: req, Actor: provider})
	require.NoError(t, err)

	req.PricePerDay = 0
	_, err = commands.Dispatch[UpdateVehicleCommand, dto.Vehicle](ctx, f.cmds, UpdateVehicleCommand{VehicleRequest: req, VehicleID: vehicle.ID, Actor: provider})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	req.PricePerDay = 50
	updated, err := commands.Dispatch[UpdateVehicleCommand, dto.Vehicle](ctx, f.cmds, UpdateVehicleCommand{VehicleRequest: req, VehicleID: vehicle.ID, Actor: provider})
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.PricePerDay)

	list, err := queries.Ask[ListVehiclesQuery, dto.VehicleCollection](ctx, f.qs, ListVehiclesQuery{Location: "porto"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	list, err = queries.Ask[ListVehiclesQuery, dto.VehicleCollection](ctx, f.qs, ListVehiclesQuery{ProviderID: "prov-2"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = commands.Dispatch[DeleteVehicleCommand, dto.Vehicle](ctx, f.cmds, DeleteVehicleCommand{VehicleID: vehicle.ID, Actor: provider})
	require.NoError(t, err)
}

func TestUploadPhotoAppendsURL(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	hotel := f.createHotel(t, provider)

	f.uploader.On("Upload", mock.Anything, "hotels/id-1/id-2.jpg", mock.Anything, "image/jpeg").
		Return("https://cdn.example.com/hotels/id-1/id-2.jpg", nil).Once()

	out, err := commands.Dispatch[UploadListingPhotoCommand, dto.PhotoUploadResult](ctx, f.cmds, UploadListingPhotoCommand{
		Kind: KindHotel, ListingID: hotel.ID, FileName: "Front.JPG", ContentType: "image/jpeg",
		Reader: strings.NewReader("jpeg"), Actor: provider,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/hotels/id-1/id-2.jpg"}, out.Photos)

	stored, err := queries.Ask[GetHotelQuery, dto.Hotel](ctx, f.qs, GetHotelQuery{HotelID: hotel.ID})
	require.NoError(t, err)
	assert.Equal(t, out.Photos, stored.Photos)
	f.uploader.AssertExpectations(t)
}

func TestUploadPhotoFailures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	hotel := f.createHotel(t, provider)

	_, err := commands.Dispatch[UploadListingPhotoCommand, dto.PhotoUploadResult](ctx, f.cmds, UploadListingPhotoCommand{
		Kind: KindHotel, ListingID: hotel.ID, FileName: "a.png", Reader: strings.NewReader("png"), Actor: rival,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	f.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket gone")).Once()
	_, err = commands.Dispatch[UploadListingPhotoCommand, dto.PhotoUploadResult](ctx, f.cmds, UploadListingPhotoCommand{
		Kind: KindHotel, ListingID: hotel.ID, FileName: "a.png", Reader: strings.NewReader("png"), Actor: provider,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindExternalProvider))

	stored, err := queries.Ask[GetHotelQuery, dto.Hotel](ctx, f.qs, GetHotelQuery{HotelID: hotel.ID})
	require.NoError(t, err)
	assert.Empty(t, stored.Photos)
}
