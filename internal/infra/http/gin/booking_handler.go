package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	bookingapp "tourhub/internal/app/handlers/booking"
	"tourhub/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{CreateBookingRequest: req, Actor: currentActor(c)}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, dto.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	q := bookingapp.GetBookingQuery{BookingID: c.Param("id"), Actor: currentActor(c)}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := bookingapp.UpdateBookingStatusCommand{BookingID: c.Param("id"), Status: req.Status, Actor: currentActor(c)}
	result, err := commands.Dispatch[bookingapp.UpdateBookingStatusCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Delete(c *gin.Context) {
	cmd := bookingapp.DeleteBookingCommand{BookingID: c.Param("id"), Actor: currentActor(c)}
	result, err := commands.Dispatch[bookingapp.DeleteBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking deleted", "booking": result})
}

var _ ReservationHTTP = BookingHandler{}
