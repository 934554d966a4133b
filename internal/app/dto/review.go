package dto

import (
	"time"

	domainreviews "tourhub/internal/domain/reviews"
)

type SubmitReviewRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	ListingID string `json:"listingId" validate:"required"`
	UserID    string `json:"userId"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment" validate:"required"`
}

type Review struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"bookingId"`
	ListingID  string    `json:"listingId"`
	ReviewerID string    `json:"userId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ReviewEnvelope struct {
	Review *Review `json:"review"`
}

type ListingReviews struct {
	Items   []Review `json:"items"`
	Average float64  `json:"average"`
	Count   int      `json:"count"`
}

func MapReview(r *domainreviews.Review) Review {
	return Review{
		ID:         string(r.ID),
		BookingID:  r.BookingID,
		ListingID:  string(r.ListingID),
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
