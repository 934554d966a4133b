package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	listingapp "tourhub/internal/app/handlers/listings"
	"tourhub/internal/app/queries"
	"tourhub/internal/domain/shared/apperr"
)

type HotelHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HotelHandler) List(c *gin.Context) {
	limit, offset := paging(c)
	q := listingapp.ListHotelsQuery{
		ProviderID: c.Query("providerId"),
		Location:   c.Query("location"),
		Limit:      limit,
		Offset:     offset,
	}
	result, err := queries.Ask[listingapp.ListHotelsQuery, dto.HotelCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HotelHandler) Create(c *gin.Context) {
	var req dto.HotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := listingapp.CreateHotelCommand{HotelRequest: req, Actor: currentActor(c)}
	result, err := commands.Dispatch[listingapp.CreateHotelCommand, dto.Hotel](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HotelHandler) Get(c *gin.Context) {
	result, err := queries.Ask[listingapp.GetHotelQuery, dto.Hotel](c.Request.Context(), h.Queries, listingapp.GetHotelQuery{HotelID: c.Param("id")})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HotelHandler) Update(c *gin.Context) {
	var req dto.HotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := listingapp.UpdateHotelCommand{HotelRequest: req, HotelID: c.Param("id"), Actor: currentActor(c)}
	result, err := commands.Dispatch[listingapp.UpdateHotelCommand, dto.Hotel](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HotelHandler) Delete(c *gin.Context) {
	cmd := listingapp.DeleteHotelCommand{HotelID: c.Param("id"), Actor: currentActor(c)}
	result, err := commands.Dispatch[listingapp.DeleteHotelCommand, dto.Hotel](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "hotel deleted", "hotel": result})
}

func (h HotelHandler) UploadPhoto(c *gin.Context) {
	uploadPhoto(c, h.Commands, h.Logger, listingapp.KindHotel)
}

type VehicleHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h VehicleHandler) List(c *gin.Context) {
	limit, offset := paging(c)
	q := listingapp.ListVehiclesQuery{
		ProviderID: c.Query("providerId"),
		Location:   c.Query("location"),
		Limit:      limit,
		Offset:     offset,
	}
	result, err := queries.Ask[listingapp.ListVehiclesQuery, dto.VehicleCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VehicleHandler) Create(c *gin.Context) {
	var req dto.VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := listingapp.CreateVehicleCommand{VehicleRequest: req, Actor: currentActor(c)}
	result, err := commands.Dispatch[listingapp.CreateVehicleCommand, dto.Vehicle](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h VehicleHandler) Get(c *gin.Context) {
	result, err := queries.Ask[listingapp.GetVehicleQuery, dto.Vehicle](c.Request.Context(), h.Queries, listingapp.GetVehicleQuery{VehicleID: c.Param("id")})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VehicleHandler) Update(c *gin.Context) {
	var req dto.VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := listingapp.UpdateVehicleCommand{VehicleRequest: req, VehicleID: c.Param("id"), Actor: currentActor(c)}
	result, err := commands.Dispatch[listingapp.UpdateVehicleCommand, dto.Vehicle](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VehicleHandler) Delete(c *gin.Context) {
	cmd := listingapp.DeleteVehicleCommand{VehicleID: c.Param("id"), Actor: currentActor(c)}
	result, err := commands.Dispatch[listingapp.DeleteVehicleCommand, dto.Vehicle](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted", "vehicle": result})
}

func (h VehicleHandler) UploadPhoto(c *gin.Context) {
	uploadPhoto(c, h.Commands, h.Logger, listingapp.KindVehicle)
}

// uploadPhoto reads the multipart "photo" field and hands the stream to the
// upload command.
func uploadPhoto(c *gin.Context, bus commands.Bus, logger *slog.Logger, kind listingapp.ListingKind) {
	header, err := c.FormFile("photo")
	if err != nil {
		writeError(c, logger, apperr.Validation("photo is required", apperr.FieldError{Field: "photo", Message: "is required"}))
		return
	}
	if header.Size > maxPhotoBytes {
		writeError(c, logger, apperr.Validation("photo is too large", apperr.FieldError{Field: "photo", Message: "must be at most 10MB"}))
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(c, logger, err)
		return
	}
	defer file.Close()

	cmd := listingapp.UploadListingPhotoCommand{
		Kind:        kind,
		ListingID:   c.Param("id"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
		Actor:       currentActor(c),
	}
	result, err := commands.Dispatch[listingapp.UploadListingPhotoCommand, dto.PhotoUploadResult](c.Request.Context(), bus, cmd)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func paging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}

var (
	_ ListingHTTP = HotelHandler{}
	_ ListingHTTP = VehicleHandler{}
)
