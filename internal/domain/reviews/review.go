package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/events"
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrCommentRequired = errors.New("reviews: comment is required")
	ErrNotFound        = errors.New("reviews: not found")
	ErrDuplicate       = errors.New("reviews: review already submitted")
)

type ReviewID string

// Review is immutable once submitted. BookingID holds either a hotel booking id
// or a vehicle order id.
type Review struct {
	ID         ReviewID
	BookingID  string
	ListingID  listings.ListingID
	ReviewerID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
	events.Recorder
}

type Repository interface {
	ByBooking(ctx context.Context, bookingID string) (*Review, error)
	ListByListing(ctx context.Context, listingID listings.ListingID, limit, offset int) ([]*Review, error)
	// Create inserts a review and returns ErrDuplicate when the booking already has one.
	Create(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID         ReviewID
	BookingID  string
	ListingID  listings.ListingID
	ReviewerID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	comment := strings.TrimSpace(params.Comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}
	review := &Review{
		ID:         params.ID,
		BookingID:  params.BookingID,
		ListingID:  params.ListingID,
		ReviewerID: params.ReviewerID,
		Rating:     params.Rating,
		Comment:    comment,
		CreatedAt:  params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, BookingID: review.BookingID, ListingID: review.ListingID, Rating: review.Rating, At: review.CreatedAt})
	return review, nil
}

// Average is computed on read; nothing caches it on the listing.
func Average(list []*Review) float64 {
	if len(list) == 0 {
		return 0
	}
	sum := 0
	for _, r := range list {
		sum += r.Rating
	}
	return float64(sum) / float64(len(list))
}
