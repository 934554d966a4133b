package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "tourhub/internal/app/outbox"
)

type queueStub struct {
	mu     sync.Mutex
	due    []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (q *queueStub) Claim(context.Context, string) (*EventDocument, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.due) == 0 {
		return nil, nil
	}
	doc := q.due[0]
	q.due = q.due[1:]
	return doc, nil
}

func (q *queueStub) MarkSent(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, id)
	return nil
}

func (q *queueStub) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type producerStub struct {
	fail error
	out  []published
}

func (p *producerStub) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail != nil {
		return p.fail
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestWorkerPublishesCloudEvents(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	queue := &queueStub{due: []*EventDocument{
		{ID: "ev-1", Name: "booking.created", Aggregate: "bk-1", OccurredAt: at, Payload: []byte(`{"BookingID":"bk-1"}`)},
		{ID: "ev-2", Name: "review.submitted", Aggregate: "rv-1", OccurredAt: at, Payload: []byte(`{}`)},
	}}
	producer := &producerStub{}
	w := &Worker{Queue: queue, Producer: producer, ID: "w1", Format: CloudEvents{TopicPrefix: "prod."}}

	require.NoError(t, w.drain(context.Background()))
	assert.Equal(t, []string{"ev-1", "ev-2"}, queue.sent)
	require.Len(t, producer.out, 2)
	assert.Equal(t, "prod.booking.events.v1", producer.out[0].topic)
	assert.Equal(t, "bk-1", producer.out[0].key)
	assert.Equal(t, "prod.review.events.v1", producer.out[1].topic)
	assert.Equal(t, "application/cloudevents+json", producer.out[0].headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(producer.out[0].payload, &evt))
	assert.Equal(t, "booking.created.v1", evt["type"])
	assert.Equal(t, "app://tourhub", evt["source"])
	assert.Equal(t, "ev-1", evt["id"])
	assert.Equal(t, map[string]any{"BookingID": "bk-1"}, evt["data"])
}

func TestWorkerBacksOffOnFailure(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	queue := &queueStub{due: []*EventDocument{
		{ID: "ev-1", Name: "order.created", Payload: []byte(`{}`), Attempts: 1},
		{ID: "ev-2", Name: "order.created", Payload: []byte(`not json`)},
	}}
	w := &Worker{
		Queue: queue, Producer: &producerStub{fail: errors.New("broker down")},
		Backoff: []time.Duration{time.Second, 5 * time.Second},
		Now:     func() time.Time { return now },
	}
	require.NoError(t, w.drain(context.Background()))
	assert.Empty(t, queue.sent)
	assert.Equal(t, now.Add(5*time.Second), queue.failed["ev-1"])
	assert.Equal(t, now.Add(time.Second), queue.failed["ev-2"])
}

func TestWorkerRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}

func TestPublisherEncodesRecord(t *testing.T) {
	producer := &producerStub{}
	p := Publisher{Producer: producer}
	require.NoError(t, p.PublishRecord(context.Background(), appoutbox.EventRecord{ID: "ev-9", Name: "listing.created", Aggregate: "h-1", Payload: []byte(`{}`)}))
	require.Len(t, producer.out, 1)
	assert.Equal(t, "listing.events.v1", producer.out[0].topic)
}
