package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	orderapp "tourhub/internal/app/handlers/orders"
	"tourhub/internal/app/queries"
)

type OrderHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := orderapp.CreateOrderCommand{CreateOrderRequest: req, Actor: currentActor(c)}
	result, err := commands.Dispatch[orderapp.CreateOrderCommand, dto.CreateOrderResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h OrderHandler) Get(c *gin.Context) {
	q := orderapp.GetOrderQuery{OrderID: c.Param("id"), Actor: currentActor(c)}
	result, err := queries.Ask[orderapp.GetOrderQuery, dto.Order](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := orderapp.UpdateOrderStatusCommand{OrderID: c.Param("id"), Status: req.Status, Actor: currentActor(c)}
	result, err := commands.Dispatch[orderapp.UpdateOrderStatusCommand, dto.Order](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h OrderHandler) Delete(c *gin.Context) {
	cmd := orderapp.DeleteOrderCommand{OrderID: c.Param("id"), Actor: currentActor(c)}
	result, err := commands.Dispatch[orderapp.DeleteOrderCommand, dto.Order](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted", "order": result})
}

var _ ReservationHTTP = OrderHandler{}
