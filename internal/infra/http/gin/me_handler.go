package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/app/dto"
	bookingapp "tourhub/internal/app/handlers/booking"
	orderapp "tourhub/internal/app/handlers/orders"
	"tourhub/internal/app/queries"
)

// MeHandler lists the caller's own reservations as a customer.
type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h MeHandler) Bookings(c *gin.Context) {
	q := bookingapp.ListCustomerBookingsQuery{Actor: currentActor(c)}
	result, err := queries.Ask[bookingapp.ListCustomerBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h MeHandler) Orders(c *gin.Context) {
	q := orderapp.ListCustomerOrdersQuery{Actor: currentActor(c)}
	result, err := queries.Ask[orderapp.ListCustomerOrdersQuery, dto.OrderCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProviderHandler lists reservations made against the caller's listings.
type ProviderHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ProviderHandler) Bookings(c *gin.Context) {
	q := bookingapp.ListProviderBookingsQuery{Actor: currentActor(c), Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListProviderBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ProviderHandler) Orders(c *gin.Context) {
	q := orderapp.ListProviderOrdersQuery{Actor: currentActor(c), Status: c.Query("status")}
	result, err := queries.Ask[orderapp.ListProviderOrdersQuery, dto.OrderCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var (
	_ ScopedListHTTP = MeHandler{}
	_ ScopedListHTTP = ProviderHandler{}
)
