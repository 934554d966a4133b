package reviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitValidatesRatingAndComment(t *testing.T) {
	base := SubmitParams{ID: "r1", BookingID: "b1", ListingID: "h1", ReviewerID: "c1", Rating: 5, Comment: " great ", CreatedAt: time.Now()}

	review, err := Submit(base)
	require.NoError(t, err)
	assert.Equal(t, "great", review.Comment)
	assert.Len(t, review.PendingEvents(), 1)

	for _, rating := range []int{0, 6, -1} {
		p := base
		p.Rating = rating
		_, err := Submit(p)
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	p := base
	p.Comment = "   "
	_, err = Submit(p)
	assert.ErrorIs(t, err, ErrCommentRequired)
}

func TestAverage(t *testing.T) {
	assert.Zero(t, Average(nil))
	assert.InDelta(t, 4.0, Average([]*Review{{Rating: 5}, {Rating: 3}}), 1e-9)
}
