package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "tourhub/internal/app/outbox"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Queue is the claim/ack side of the outbox store.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

// Worker polls the queue and publishes each record as a CloudEvent.
type Worker struct {
	Queue    Queue
	Producer Producer
	Interval time.Duration
	Backoff  []time.Duration
	ID       string
	Logger   *slog.Logger
	Now      func() time.Time
	Format   CloudEvents
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil && w.Logger != nil && ctx.Err() == nil {
				w.Logger.Error("outbox poll failed", "worker_id", w.ID, "error", err)
			}
		}
	}
}

// drain publishes every due record.
func (w *Worker) drain(ctx context.Context) error {
	for {
		published, err := w.processOnce(ctx)
		if err != nil || !published {
			return err
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	doc, err := w.Queue.Claim(ctx, w.ID)
	if err != nil || doc == nil {
		return false, err
	}
	topic, payload, headers, err := w.Format.Encode(recordOf(doc))
	if err == nil {
		err = w.Producer.Publish(ctx, topic, doc.Aggregate, payload, headers)
	}
	if err != nil {
		if w.Logger != nil {
			w.Logger.Warn("outbox publish failed", "event_id", doc.ID, "event", doc.Name, "attempts", doc.Attempts+1, "error", err)
		}
		return true, w.Queue.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	return true, w.Queue.MarkSent(ctx, doc.ID)
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	switch {
	case attempts < len(w.Backoff):
		return now.Add(w.Backoff[attempts])
	case len(w.Backoff) > 0:
		return now.Add(w.Backoff[len(w.Backoff)-1])
	}
	return now.Add(5 * time.Second)
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func recordOf(doc *EventDocument) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         doc.ID,
		Name:       doc.Name,
		Payload:    doc.Payload,
		OccurredAt: doc.OccurredAt,
		Aggregate:  doc.Aggregate,
		Headers:    doc.Headers,
	}
}

// CloudEvents wraps records in a structured-mode CloudEvents 1.0 envelope.
type CloudEvents struct {
	TopicPrefix string
	Source      string
}

func (f CloudEvents) Encode(rec appoutbox.EventRecord) (topic string, payload []byte, headers map[string]string, err error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return "", nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          f.source(),
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err = json.Marshal(evt)
	if err != nil {
		return "", nil, nil, err
	}
	headers = map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return f.topicFor(rec.Name), payload, headers, nil
}

// topicFor routes "booking.created" to "<prefix>booking.events.v1".
func (f CloudEvents) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return f.TopicPrefix + base + ".events.v1"
}

func (f CloudEvents) source() string {
	if f.Source != "" {
		return f.Source
	}
	return "app://tourhub"
}

// Publisher sends records straight to the producer; the in-memory outbox uses
// it when Kafka is configured without Mongo.
type Publisher struct {
	Producer Producer
	Format   CloudEvents
}

func (p Publisher) PublishRecord(ctx context.Context, rec appoutbox.EventRecord) error {
	topic, payload, headers, err := p.Format.Encode(rec)
	if err != nil {
		return err
	}
	return p.Producer.Publish(ctx, topic, rec.Aggregate, payload, headers)
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")
