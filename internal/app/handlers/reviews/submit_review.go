package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/outbox"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	domainreviews "tourhub/internal/domain/reviews"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/domain/shared/lifecycle"
)

const submitReviewKey = "reviews.submit"

type SubmitReviewCommand struct {
	dto.SubmitReviewRequest
	Actor authz.Actor
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler stores at most one review per completed booking or order.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

type reservation struct {
	id        string
	listingID domainlistings.ListingID
	status    lifecycle.Status
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	defer unit.Close(ctx)

	res, err := findReservation(ctx, unit, cmd.BookingID)
	if err != nil {
		return dto.Review{}, err
	}
	if res.status != lifecycle.Completed {
		return dto.Review{}, apperr.State("booking is not completed", nil)
	}
	if res.listingID != domainlistings.ListingID(cmd.ListingID) {
		return dto.Review{}, apperr.Validation("listing does not match booking",
			apperr.FieldError{Field: "listingId", Message: "does not match the booked listing"})
	}

	if _, err := unit.Reviews().ByBooking(ctx, res.id); err == nil {
		return dto.Review{}, apperr.Conflict("review already submitted", domainreviews.ErrDuplicate)
	} else if !errors.Is(err, domainreviews.ErrNotFound) {
		return dto.Review{}, err
	}

	reviewer := cmd.Actor.ID
	if reviewer == "" {
		reviewer = strings.TrimSpace(cmd.UserID)
	}
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(support.NewID(h.NewID)),
		BookingID:  res.id,
		ListingID:  res.listingID,
		ReviewerID: reviewer,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  support.Now(h.Now),
	})
	if err != nil {
		return dto.Review{}, apperr.Validation(err.Error())
	}
	if err := unit.Reviews().Create(ctx, review); err != nil {
		if errors.Is(err, domainreviews.ErrDuplicate) {
			return dto.Review{}, apperr.Conflict("review already submitted", err)
		}
		return dto.Review{}, err
	}
	out := dto.MapReview(review)
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, review); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Review{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted", "booking_id", res.id, "listing_id", res.listingID, "reviewer_id", reviewer, "rating", review.Rating)
	}
	return out, nil
}

// findReservation looks for a hotel booking first, then a vehicle order.
func findReservation(ctx context.Context, unit uow.UnitOfWork, id string) (reservation, error) {
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
	if err == nil {
		return reservation{id: string(booking.ID), listingID: booking.HotelID, status: booking.Status}, nil
	}
	if !errors.Is(err, domainbooking.ErrBookingNotFound) {
		return reservation{}, err
	}
	order, err := unit.Orders().ByID(ctx, domainorder.OrderID(id))
	if err == nil {
		return reservation{id: string(order.ID), listingID: order.VehicleID, status: order.Status}, nil
	}
	if errors.Is(err, domainorder.ErrOrderNotFound) {
		return reservation{}, apperr.NotFound("booking not found", err)
	}
	return reservation{}, err
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
