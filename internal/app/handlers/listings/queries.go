package listings

import (
	"context"

	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/queries"
	"tourhub/internal/app/uow"
	domainlistings "tourhub/internal/domain/listings"
)

const (
	getHotelKey     = "listings.hotels.get"
	listHotelsKey   = "listings.hotels.list"
	getVehicleKey   = "listings.vehicles.get"
	listVehiclesKey = "listings.vehicles.list"
)

type GetHotelQuery struct {
	HotelID string
}

func (q GetHotelQuery) Key() string { return getHotelKey }

type GetHotelHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetHotelHandler) Handle(ctx context.Context, q GetHotelQuery) (dto.Hotel, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Hotel{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	hotel, err := loadHotel(ctx, unit, q.HotelID)
	if err != nil {
		return dto.Hotel{}, err
	}
	return dto.MapHotel(hotel), nil
}

// ListHotelsQuery filters by provider and a case-insensitive location substring.
type ListHotelsQuery struct {
	ProviderID string
	Location   string
	Limit      int
	Offset     int
}

func (q ListHotelsQuery) Key() string { return listHotelsKey }

type ListHotelsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHotelsHandler) Handle(ctx context.Context, q ListHotelsQuery) (dto.HotelCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HotelCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	hotels, err := unit.Hotels().List(ctx, filterOf(q.ProviderID, q.Location, q.Limit, q.Offset))
	if err != nil {
		return dto.HotelCollection{}, err
	}
	out := dto.HotelCollection{Items: make([]dto.Hotel, 0, len(hotels))}
	for _, hotel := range hotels {
		out.Items = append(out.Items, dto.MapHotel(hotel))
	}
	return out, nil
}

type GetVehicleQuery struct {
	VehicleID string
}

func (q GetVehicleQuery) Key() string { return getVehicleKey }

type GetVehicleHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetVehicleHandler) Handle(ctx context.Context, q GetVehicleQuery) (dto.Vehicle, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Vehicle{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	vehicle, err := loadVehicle(ctx, unit, q.VehicleID)
	if err != nil {
		return dto.Vehicle{}, err
	}
	return dto.MapVehicle(vehicle), nil
}

type ListVehiclesQuery struct {
	ProviderID string
	Location   string
	Limit      int
	Offset     int
}

func (q ListVehiclesQuery) Key() string { return listVehiclesKey }

type ListVehiclesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListVehiclesHandler) Handle(ctx context.Context, q ListVehiclesQuery) (dto.VehicleCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.VehicleCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	vehicles, err := unit.Vehicles().List(ctx, filterOf(q.ProviderID, q.Location, q.Limit, q.Offset))
	if err != nil {
		return dto.VehicleCollection{}, err
	}
	out := dto.VehicleCollection{Items: make([]dto.Vehicle, 0, len(vehicles))}
	for _, vehicle := range vehicles {
		out.Items = append(out.Items, dto.MapVehicle(vehicle))
	}
	return out, nil
}

func filterOf(provider, location string, limit, offset int) domainlistings.Filter {
	return domainlistings.Filter{
		ProviderID: domainlistings.ProviderID(provider),
		Location:   location,
		Limit:      limit,
		Offset:     offset,
	}
}

var (
	_ queries.Handler[GetHotelQuery, dto.Hotel]                 = (*GetHotelHandler)(nil)
	_ queries.Handler[ListHotelsQuery, dto.HotelCollection]     = (*ListHotelsHandler)(nil)
	_ queries.Handler[GetVehicleQuery, dto.Vehicle]             = (*GetVehicleHandler)(nil)
	_ queries.Handler[ListVehiclesQuery, dto.VehicleCollection] = (*ListVehiclesHandler)(nil)
)
