package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	paymentapp "tourhub/internal/app/handlers/payments"
)

type PaymentHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

func (h PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := paymentapp.CreateIntentCommand{CreateIntentRequest: req, Actor: currentActor(c)}
	result, err := commands.Dispatch[paymentapp.CreateIntentCommand, dto.CreateIntentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := paymentapp.ConfirmPaymentCommand{ConfirmPaymentRequest: req, Actor: currentActor(c)}
	result, err := commands.Dispatch[paymentapp.ConfirmPaymentCommand, dto.ConfirmPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
