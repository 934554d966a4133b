package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	reviewapp "tourhub/internal/app/handlers/reviews"
	"tourhub/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h ReviewHandler) Submit(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.Logger, err)
		return
	}
	cmd := reviewapp.SubmitReviewCommand{SubmitReviewRequest: req, Actor: currentActor(c)}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": result})
}

func (h ReviewHandler) ByBooking(c *gin.Context) {
	q := reviewapp.BookingReviewQuery{BookingID: c.Param("bookingId")}
	result, err := queries.Ask[reviewapp.BookingReviewQuery, dto.ReviewEnvelope](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) ByListing(c *gin.Context) {
	limit, offset := paging(c)
	q := reviewapp.ListListingReviewsQuery{ListingID: c.Param("listingId"), Limit: limit, Offset: offset}
	result, err := queries.Ask[reviewapp.ListListingReviewsQuery, dto.ListingReviews](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewHTTP = ReviewHandler{}
