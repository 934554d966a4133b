package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/middleware"
	appoutbox "tourhub/internal/app/outbox"
	"tourhub/internal/app/queries"
	"tourhub/internal/app/validation"
	"tourhub/internal/domain/authz"
	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/lifecycle"
	"tourhub/internal/domain/user"
	"tourhub/internal/infra/storage/memory"
)

var (
	fixedNow = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	customer = authz.Actor{ID: "cust-1", Role: user.RoleCustomer}
	provider = authz.Actor{ID: "prov-1", Role: user.RoleProvider}
)

type fixture struct {
	factory memory.Factory
	box     *memory.Outbox
	cmds    commands.Bus
	qs      queries.Bus
}

func setup(t *testing.T, enforce bool) *fixture {
	t.Helper()
	factory := memory.NewFactory()
	box := memory.NewOutbox(nil)
	now := func() time.Time { return fixedNow }

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[CreateBookingCommand, dto.CreateBookingResult](bus, createBookingKey, &CreateBookingHandler{
		UoWFactory: factory, Outbox: box, Now: now, EnforceAvailability: enforce,
	})
	commands.RegisterHandler[UpdateBookingStatusCommand, dto.Booking](bus, updateBookingStatusKey, &UpdateBookingStatusHandler{UoWFactory: factory, Outbox: box, Now: now})
	commands.RegisterHandler[DeleteBookingCommand, dto.Booking](bus, deleteBookingKey, &DeleteBookingHandler{UoWFactory: factory, Outbox: box, Now: now})

	qbus := queries.NewInMemoryBus()
	queries.RegisterHandler[GetBookingQuery, dto.Booking](qbus, getBookingKey, &GetBookingHandler{UoWFactory: factory})
	queries.RegisterHandler[ListProviderBookingsQuery, dto.BookingCollection](qbus, listProviderBookingsKey, &ListProviderBookingsHandler{UoWFactory: factory})

	hotel := &domainlistings.Hotel{
		ID: "hotel-1", ProviderID: "prov-1", Name: "Lagoon Inn",
		Rooms: []domainlistings.Room{{Type: "double", Price: 100}, {Type: "", Price: 80}},
	}
	require.NoError(t, factory.HotelsRepo.Save(context.Background(), hotel))

	return &fixture{
		factory: factory,
		box:     box,
		cmds:    middleware.ChainCommands(bus, middleware.Validation(validation.New()), middleware.OutboxFlush(box), middleware.Transaction(factory)),
		qs:      qbus,
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func request(total float64) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		HotelID:      "hotel-1",
		RoomIndex:    intPtr(0),
		FirstName:    "Mia",
		LastName:     "Reyes",
		Email:        "mia@example.com",
		PhoneNumber:  "+63 900 000 0000",
		CheckInDate:  "2025-03-01",
		CheckOutDate: "2025-03-04",
		TotalPrice:   floatPtr(total),
	}
}

func (f *fixture) create(t *testing.T, req dto.CreateBookingRequest) (dto.CreateBookingResult, error) {
	t.Helper()
	return commands.Dispatch[CreateBookingCommand, dto.CreateBookingResult](context.Background(), f.cmds, CreateBookingCommand{CreateBookingRequest: req, Actor: customer})
}

func TestCreateBookingAcceptsMatchingPrice(t *testing.T) {
	f := setup(t, false)

	res, err := f.create(t, request(300))
	require.NoError(t, err)
	assert.NotEmpty(t, res.BookingID)
	assert.InDelta(t, 300.0, res.TotalPrice, 1e-9)

	_, err = f.create(t, request(300.01))
	require.NoError(t, err, "within tolerance")

	stored, err := f.factory.BookingsRepo.ByID(context.Background(), domainbooking.BookingID(res.BookingID))
	require.NoError(t, err)
	assert.Equal(t, "cust-1", stored.CustomerID)
	assert.Equal(t, lifecycle.Pending, stored.Status)

	require.NotEmpty(t, f.box.Published())
	assert.Equal(t, "booking.created", f.box.Published()[0].Name)
}

func TestCreateBookingFailureKinds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.CreateBookingRequest)
		kind   apperr.Kind
	}{
		{"price mismatch", func(r *dto.CreateBookingRequest) { r.TotalPrice = floatPtr(250) }, apperr.KindPriceMismatch},
		{"missing fields", func(r *dto.CreateBookingRequest) { r.Email = ""; r.FirstName = "" }, apperr.KindValidation},
		{"listing not found", func(r *dto.CreateBookingRequest) { r.HotelID = "nope" }, apperr.KindNotFound},
		{"room index out of bounds", func(r *dto.CreateBookingRequest) { r.RoomIndex = intPtr(7) }, apperr.KindValidation},
		{"malformed room", func(r *dto.CreateBookingRequest) { r.RoomIndex = intPtr(1) }, apperr.KindDataIntegrity},
		{"dates reversed", func(r *dto.CreateBookingRequest) { r.CheckOutDate = "2025-02-27" }, apperr.KindValidation},
		{"same day", func(r *dto.CreateBookingRequest) { r.CheckOutDate = r.CheckInDate }, apperr.KindValidation},
		{"unparseable date", func(r *dto.CreateBookingRequest) { r.CheckInDate = "soon" }, apperr.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t, false)
			req := request(300)
			tc.mutate(&req)
			_, err := f.create(t, req)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestCreateBookingReportsEveryMissingField(t *testing.T) {
	f := setup(t, false)
	_, err := f.create(t, dto.CreateBookingRequest{})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	fields := map[string]bool{}
	for _, fe := range appErr.Fields {
		fields[fe.Field] = true
	}
	for _, name := range []string{"hotelId", "roomIndex", "firstName", "lastName", "email", "phoneNumber", "checkInDate", "checkOutDate", "totalPrice"} {
		assert.True(t, fields[name], name)
	}
}

func TestBookingKeepsRoomSnapshotAfterListingEdit(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	res, err := f.create(t, request(300))
	require.NoError(t, err)

	hotel, err := f.factory.HotelsRepo.ByID(ctx, "hotel-1")
	require.NoError(t, err)
	require.NoError(t, hotel.Update(domainlistings.HotelParams{Name: hotel.Name, Rooms: []domainlistings.Room{{Type: "suite", Price: 500}}, Now: fixedNow}))
	require.NoError(t, f.factory.HotelsRepo.Save(ctx, hotel))

	got, err := queries.Ask[GetBookingQuery, dto.Booking](ctx, f.qs, GetBookingQuery{BookingID: res.BookingID, Actor: customer})
	require.NoError(t, err)
	assert.Equal(t, "double", got.RoomType)
	assert.InDelta(t, 300.0, got.TotalPrice, 1e-9)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "holding", got.PaymentStatus)
	require.NotNil(t, got.Hotel)
	assert.Equal(t, "Lagoon Inn", got.Hotel.Name)
}

func TestDoubleBookingAllowedUnlessEnforced(t *testing.T) {
	f := setup(t, false)
	_, err := f.create(t, request(300))
	require.NoError(t, err)
	_, err = f.create(t, request(300))
	require.NoError(t, err)

	f = setup(t, true)
	_, err = f.create(t, request(300))
	require.NoError(t, err)
	_, err = f.create(t, request(300))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestConcurrentAcceptBothSucceed(t *testing.T) {
	f := setup(t, false)
	res, err := f.create(t, request(300))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]dto.Booking, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = commands.Dispatch[UpdateBookingStatusCommand, dto.Booking](context.Background(), f.cmds,
				UpdateBookingStatusCommand{BookingID: res.BookingID, Status: "accepted", Actor: provider})
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "accepted", results[i].Status)
	}
}

func TestUpdateStatusRules(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	res, err := f.create(t, request(300))
	require.NoError(t, err)

	update := func(actor authz.Actor, status string) error {
		_, err := commands.Dispatch[UpdateBookingStatusCommand, dto.Booking](ctx, f.cmds, UpdateBookingStatusCommand{BookingID: res.BookingID, Status: status, Actor: actor})
		return err
	}

	assert.True(t, apperr.IsKind(update(customer, "accepted"), apperr.KindAuthorization))
	assert.True(t, apperr.IsKind(update(provider, "confirmed"), apperr.KindValidation))
	assert.True(t, apperr.IsKind(update(provider, "shipped"), apperr.KindValidation))
	assert.True(t, apperr.IsKind(update(provider, "completed"), apperr.KindState))
	require.NoError(t, update(provider, "accepted"))
	require.NoError(t, update(provider, "completed"))
	assert.True(t, apperr.IsKind(update(provider, "pending"), apperr.KindState))

	_, err = commands.Dispatch[UpdateBookingStatusCommand, dto.Booking](ctx, f.cmds, UpdateBookingStatusCommand{BookingID: "missing", Status: "accepted", Actor: provider})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	list, err := queries.Ask[ListProviderBookingsQuery, dto.BookingCollection](ctx, f.qs, ListProviderBookingsQuery{Actor: provider, Status: string(lifecycle.Completed)})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestDeleteBooking(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	_, err := commands.Dispatch[DeleteBookingCommand, dto.Booking](ctx, f.cmds, DeleteBookingCommand{BookingID: "missing", Actor: provider})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	res, err := f.create(t, request(300))
	require.NoError(t, err)
	_, err = commands.Dispatch[DeleteBookingCommand, dto.Booking](ctx, f.cmds, DeleteBookingCommand{BookingID: res.BookingID, Actor: customer})
	require.NoError(t, err)

	_, err = queries.Ask[GetBookingQuery, dto.Booking](ctx, f.qs, GetBookingQuery{BookingID: res.BookingID, Actor: customer})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

type brokerDown struct{}

func (brokerDown) PublishRecord(context.Context, appoutbox.EventRecord) error {
	return errors.New("kafka: broker not available")
}

func TestCreateBookingSucceedsWhenPublishFails(t *testing.T) {
	f := setup(t, false)
	f.box.Publisher = brokerDown{}

	res, err := f.create(t, request(300))
	require.NoError(t, err)

	_, err = f.factory.BookingsRepo.ByID(context.Background(), domainbooking.BookingID(res.BookingID))
	require.NoError(t, err)
	assert.Empty(t, f.box.Published())
	require.Len(t, f.box.Retrying(), 1)
	assert.Equal(t, "booking.created", f.box.Retrying()[0].Name)
}

// paidWhileLoading confirms payment right after the first load, before the
// caller writes its change.
type paidWhileLoading struct {
	domainbooking.Repository
	once sync.Once
}

func (r *paidWhileLoading) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	b, err := r.Repository.ByID(ctx, id)
	r.once.Do(func() {
		_ = r.Repository.MarkPaid(ctx, id, "pi_1", lifecycle.Confirmed, fixedNow)
	})
	return b, err
}

func TestAcceptKeepsPaymentConfirmedMeanwhile(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewFactory()
	require.NoError(t, factory.BookingsRepo.Save(ctx, &domainbooking.Booking{
		ID: "b1", HotelID: "hotel-1", ProviderID: "prov-1", CustomerID: "cust-1",
		Status: lifecycle.Pending, PaymentStatus: domainbooking.PaymentHolding,
	}))
	factory.BookingsRepo = &paidWhileLoading{Repository: factory.BookingsRepo}

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[UpdateBookingStatusCommand, dto.Booking](bus, updateBookingStatusKey,
		&UpdateBookingStatusHandler{UoWFactory: factory, Now: func() time.Time { return fixedNow.Add(time.Minute) }})

	out, err := commands.Dispatch[UpdateBookingStatusCommand, dto.Booking](ctx, middleware.ChainCommands(bus, middleware.Transaction(factory)),
		UpdateBookingStatusCommand{BookingID: "b1", Status: "accepted", Actor: provider})
	require.NoError(t, err)
	assert.Equal(t, "accepted", out.Status)

	stored, err := factory.BookingsRepo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Accepted, stored.Status)
	assert.Equal(t, domainbooking.PaymentCompleted, stored.PaymentStatus)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
}
