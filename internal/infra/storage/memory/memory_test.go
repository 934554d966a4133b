package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "tourhub/internal/app/outbox"
	domainbooking "tourhub/internal/domain/booking"
	domainlistings "tourhub/internal/domain/listings"
	domainorder "tourhub/internal/domain/order"
	domainreviews "tourhub/internal/domain/reviews"
	"tourhub/internal/domain/shared/lifecycle"
	"tourhub/internal/domain/verification"
)

func TestCodeStoreExpiresWithFakeClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewCodeStore(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, "k", "123456", 10*time.Minute))
	code, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	now = now.Add(10 * time.Minute)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, verification.ErrCodeNotFound)
}

func TestBookingRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	b := &domainbooking.Booking{ID: "b1", HotelID: "h1", ProviderID: "p1", Status: lifecycle.Pending}
	require.NoError(t, repo.Save(ctx, b))

	loaded, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	loaded.Status = lifecycle.Cancelled

	again, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Pending, again.Status)

	byProvider, err := repo.ListByProvider(ctx, "p1", lifecycle.Pending)
	require.NoError(t, err)
	assert.Len(t, byProvider, 1)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), domainbooking.ErrBookingNotFound)
}

func TestHotelResolveReferencesSkipsMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewHotelRepository()
	require.NoError(t, repo.Save(ctx, &domainlistings.Hotel{ID: "h1", Name: "Sea View"}))

	got, err := repo.ResolveReferences(ctx, []domainlistings.ListingID{"h1", "h2"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Sea View", got["h1"].Name)
}

func TestReviewRepositoryRejectsSecondReview(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()
	require.NoError(t, repo.Create(ctx, &domainreviews.Review{ID: "r1", BookingID: "b1", ListingID: "h1", Rating: 4}))
	assert.ErrorIs(t, repo.Create(ctx, &domainreviews.Review{ID: "r2", BookingID: "b1"}), domainreviews.ErrDuplicate)

	list, err := repo.ListByListing(ctx, "h1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishRecord(context.Context, appoutbox.EventRecord) error {
	p.calls++
	return errors.New("broker down")
}

func TestOutboxKeepsRecordsWhenPublishFails(t *testing.T) {
	ctx := appoutbox.WithScope(context.Background())
	box := NewOutbox(nil)
	publisher := &failingPublisher{}
	box.Publisher = publisher
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e1", Name: "booking.created"}))

	require.NoError(t, box.Flush(ctx), "a broker failure must not fail the stored command")
	assert.Equal(t, 1, publisher.calls)
	assert.Empty(t, box.Published())
	require.Len(t, box.Retrying(), 1)

	box.Publisher = nil
	next := appoutbox.WithScope(context.Background())
	require.NoError(t, box.Add(next, appoutbox.EventRecord{ID: "e2", Name: "booking.status_changed"}))
	require.NoError(t, box.Flush(next))
	published := box.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "e1", published[0].ID)
	assert.Equal(t, "e2", published[1].ID)
	assert.Empty(t, box.Retrying())
}

func TestOutboxFlushesOnlyItsOwnScope(t *testing.T) {
	box := NewOutbox(nil)
	first := appoutbox.WithScope(context.Background())
	second := appoutbox.WithScope(context.Background())
	require.NoError(t, box.Add(first, appoutbox.EventRecord{ID: "a"}))
	require.NoError(t, box.Add(second, appoutbox.EventRecord{ID: "b"}))

	require.NoError(t, box.Flush(first))
	require.Len(t, box.Published(), 1)
	assert.Equal(t, "a", box.Published()[0].ID)

	box.Discard(second)
	require.NoError(t, box.Flush(second))
	assert.Len(t, box.Published(), 1)
}

func TestBookingStatusWriteKeepsConfirmedPayment(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &domainbooking.Booking{
		ID: "b1", ProviderID: "p1", Status: lifecycle.Pending, PaymentStatus: domainbooking.PaymentHolding, CreatedAt: created,
	}))

	payer, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	provider, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)

	require.NoError(t, payer.ConfirmPayment("pi_1", created.Add(time.Hour)))
	require.NoError(t, repo.MarkPaid(ctx, payer.ID, payer.PaymentIntentID, payer.Status, payer.UpdatedAt))

	require.NoError(t, provider.SetStatus(lifecycle.Accepted, created.Add(2*time.Hour)))
	require.NoError(t, repo.UpdateStatus(ctx, provider.ID, provider.Status, provider.UpdatedAt))

	stored, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Accepted, stored.Status)
	assert.Equal(t, domainbooking.PaymentCompleted, stored.PaymentStatus)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	assert.Equal(t, created.Add(2*time.Hour), stored.UpdatedAt)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", lifecycle.Accepted, created), domainbooking.ErrBookingNotFound)
	assert.ErrorIs(t, repo.MarkPaid(ctx, "missing", "pi", lifecycle.Confirmed, created), domainbooking.ErrBookingNotFound)
}

func TestOrderStatusWriteLeavesOtherFields(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	require.NoError(t, repo.Save(ctx, &domainorder.Order{ID: "o1", TotalPrice: 90, PickupLocation: "Airport", Status: lifecycle.Pending}))

	require.NoError(t, repo.UpdateStatus(ctx, "o1", lifecycle.Confirmed, time.Now()))
	stored, err := repo.ByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Confirmed, stored.Status)
	assert.Equal(t, "Airport", stored.PickupLocation)
	assert.Equal(t, 90.0, stored.TotalPrice)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", lifecycle.Confirmed, time.Now()), domainorder.ErrOrderNotFound)
}
