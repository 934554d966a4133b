package reviews

import (
	"context"
	"errors"

	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/queries"
	"tourhub/internal/app/uow"
	domainlistings "tourhub/internal/domain/listings"
	domainreviews "tourhub/internal/domain/reviews"
)

const (
	listListingReviewsKey = "reviews.list.listing"
	bookingReviewKey      = "reviews.get.booking"
)

type ListListingReviewsQuery struct {
	ListingID string
	Limit     int
	Offset    int
}

func (q ListListingReviewsQuery) Key() string { return listListingReviewsKey }

// ListListingReviewsHandler returns reviews with an average computed on read.
type ListListingReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListListingReviewsHandler) Handle(ctx context.Context, q ListListingReviewsQuery) (dto.ListingReviews, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingReviews{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	all, err := unit.Reviews().ListByListing(ctx, domainlistings.ListingID(q.ListingID), 0, 0)
	if err != nil {
		return dto.ListingReviews{}, err
	}
	result := dto.ListingReviews{
		Items:   []dto.Review{},
		Average: domainreviews.Average(all),
		Count:   len(all),
	}
	for _, r := range window(all, q.Limit, q.Offset) {
		result.Items = append(result.Items, dto.MapReview(r))
	}
	return result, nil
}

func window(all []*domainreviews.Review, limit, offset int) []*domainreviews.Review {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

type BookingReviewQuery struct {
	BookingID string
}

func (q BookingReviewQuery) Key() string { return bookingReviewKey }

// BookingReviewHandler returns an envelope with a nil review when none exists.
type BookingReviewHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *BookingReviewHandler) Handle(ctx context.Context, q BookingReviewQuery) (dto.ReviewEnvelope, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewEnvelope{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	review, err := unit.Reviews().ByBooking(ctx, q.BookingID)
	if err != nil {
		if errors.Is(err, domainreviews.ErrNotFound) {
			return dto.ReviewEnvelope{}, nil
		}
		return dto.ReviewEnvelope{}, err
	}
	mapped := dto.MapReview(review)
	return dto.ReviewEnvelope{Review: &mapped}, nil
}

var (
	_ queries.Handler[ListListingReviewsQuery, dto.ListingReviews] = (*ListListingReviewsHandler)(nil)
	_ queries.Handler[BookingReviewQuery, dto.ReviewEnvelope]      = (*BookingReviewHandler)(nil)
)
