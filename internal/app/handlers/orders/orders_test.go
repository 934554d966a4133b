package orders

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
	"tourhub/internal/app/validation"
	"tourhub/internal/domain/authz"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/lifecycle"
	"tourhub/internal/domain/user"
	"tourhub/internal/infra/storage/memory"
)

var (
	customer = authz.Actor{ID: "cust-1", Role: user.RoleCustomer}
	provider = authz.Actor{ID: "prov-1", Role: user.RoleProvider}
)

// faultyVehicles fails Save with err once set.
type faultyVehicles struct {
	*memory.VehicleRepository
	mu  sync.Mutex
	err error
}

func (r *faultyVehicles) failSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *faultyVehicles) Save(ctx context.Context, vehicle *domainlistings.Vehicle) error {
	r.mu.Lock()
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.VehicleRepository.Save(ctx, vehicle)
}

type fixture struct {
	factory  memory.Factory
	vehicles *faultyVehicles
	bus      commands.Bus
}

func setup(t *testing.T, enforce bool) *fixture {
	t.Helper()
	factory := memory.NewFactory()
	vehicles := &faultyVehicles{VehicleRepository: memory.NewVehicleRepository()}
	factory.VehiclesRepo = vehicles
	box := memory.NewOutbox(nil)
	now := func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[CreateOrderCommand, dto.CreateOrderResult](bus, createOrderKey, &CreateOrderHandler{UoWFactory: factory, Outbox: box, Now: now, EnforceAvailability: enforce})
	commands.RegisterHandler[UpdateOrderStatusCommand, dto.Order](bus, updateOrderStatusKey, &UpdateOrderStatusHandler{UoWFactory: factory, Outbox: box, Now: now})
	commands.RegisterHandler[DeleteOrderCommand, dto.Order](bus, deleteOrderKey, &DeleteOrderHandler{UoWFactory: factory})

	require.NoError(t, vehicles.Save(context.Background(), &domainlistings.Vehicle{ID: "veh-1", ProviderID: "prov-1", Make: "Toyota", Model: "Hiace", PricePerDay: 45}))
	require.NoError(t, vehicles.Save(context.Background(), &domainlistings.Vehicle{ID: "veh-0", ProviderID: "prov-1", Make: "Kia", Model: "Rio"}))

	return &fixture{
		factory:  factory,
		vehicles: vehicles,
		bus:      middleware.ChainCommands(bus, middleware.Validation(validation.New()), middleware.OutboxFlush(box), middleware.Transaction(factory)),
	}
}

func orderRequest(vehicleID string, total float64) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		VehicleID:   vehicleID,
		FirstName:   "Leo",
		LastName:    "Santos",
		Email:       "leo@example.com",
		PhoneNumber: "555-0101",
		PickupDate:  "2025-03-10",
		DropoffDate: "2025-03-13",
		TotalPrice:  &total,
	}
}

func (f *fixture) create(t *testing.T, req dto.CreateOrderRequest) (dto.CreateOrderResult, error) {
	t.Helper()
	return commands.Dispatch[CreateOrderCommand, dto.CreateOrderResult](context.Background(), f.bus, CreateOrderCommand{CreateOrderRequest: req, Actor: customer})
}

func (f *fixture) setStatus(id, status string) (dto.Order, error) {
	return commands.Dispatch[UpdateOrderStatusCommand, dto.Order](context.Background(), f.bus, UpdateOrderStatusCommand{OrderID: id, Status: status, Actor: provider})
}

func TestCreateOrder(t *testing.T) {
	f := setup(t, false)

	res, err := f.create(t, orderRequest("veh-1", 135))
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)

	_, err = f.create(t, orderRequest("veh-1", 90))
	assert.True(t, apperr.IsKind(err, apperr.KindPriceMismatch))

	_, err = f.create(t, orderRequest("missing", 135))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.create(t, orderRequest("veh-0", 135))
	assert.True(t, apperr.IsKind(err, apperr.KindDataIntegrity))
}

func TestConfirmAppendsAvailabilityWithoutCheck(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	first, err := f.create(t, orderRequest("veh-1", 135))
	require.NoError(t, err)
	second, err := f.create(t, orderRequest("veh-1", 135))
	require.NoError(t, err)

	_, err = f.setStatus(first.OrderID, "accepted")
	assert.True(t, apperr.IsKind(err, apperr.KindState))

	out, err := f.setStatus(first.OrderID, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", out.Status)
	_, err = f.setStatus(first.OrderID, "confirmed")
	require.NoError(t, err, "repeat confirm converges")
	_, err = f.setStatus(second.OrderID, "confirmed")
	require.NoError(t, err)

	vehicle, err := f.vehicles.ByID(ctx, "veh-1")
	require.NoError(t, err)
	assert.Len(t, vehicle.Availability, 2)
	assert.Equal(t, first.OrderID, vehicle.Availability[0].OrderID)
}

func TestConfirmRestoresStatusWhenVehicleWriteFails(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	res, err := f.create(t, orderRequest("veh-1", 135))
	require.NoError(t, err)

	writeErr := errors.New("disk full")
	f.vehicles.failSaves(writeErr)
	_, err = f.setStatus(res.OrderID, "confirmed")
	require.ErrorIs(t, err, writeErr)

	stored, err := f.factory.OrdersRepo.ByID(ctx, domainorder.OrderID(res.OrderID))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Pending, stored.Status)
}

func TestEnforcedAvailabilityRejectsOverlap(t *testing.T) {
	f := setup(t, true)
	res, err := f.create(t, orderRequest("veh-1", 135))
	require.NoError(t, err)
	_, err = f.setStatus(res.OrderID, "confirmed")
	require.NoError(t, err)

	_, err = f.create(t, orderRequest("veh-1", 135))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestDeleteOrder(t *testing.T) {
	f := setup(t, false)
	_, err := commands.Dispatch[DeleteOrderCommand, dto.Order](context.Background(), f.bus, DeleteOrderCommand{OrderID: "missing", Actor: provider})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	res, err := f.create(t, orderRequest("veh-1", 135))
	require.NoError(t, err)
	stranger := authz.Actor{ID: "cust-2", Role: user.RoleCustomer}
	_, err = commands.Dispatch[DeleteOrderCommand, dto.Order](context.Background(), f.bus, DeleteOrderCommand{OrderID: res.OrderID, Actor: stranger})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	_, err = commands.Dispatch[DeleteOrderCommand, dto.Order](context.Background(), f.bus, DeleteOrderCommand{OrderID: res.OrderID, Actor: provider})
	require.NoError(t, err)
}
