package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "tourhub/internal/app/outbox"
)

// Publisher receives flushed records, e.g. a Kafka producer adapter.
type Publisher interface {
	PublishRecord(ctx context.Context, record appoutbox.EventRecord) error
}

// Outbox buffers records per dispatch scope until Flush, then hands them to
// Publisher or, when none is configured, writes them to the log.
//
// The command has already been stored when Flush runs, so a failed publish is
// logged and the remaining records are retried ahead of the next flush.
type Outbox struct {
	mu        sync.Mutex
	pending   map[*appoutbox.Scope][]appoutbox.EventRecord
	retry     []appoutbox.EventRecord
	published []appoutbox.EventRecord
	Publisher Publisher
	Logger    *slog.Logger
}

func NewOutbox(logger *slog.Logger) *Outbox {
	return &Outbox{Logger: logger, pending: make(map[*appoutbox.Scope][]appoutbox.EventRecord)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	scope := appoutbox.ScopeOf(ctx)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		o.pending = make(map[*appoutbox.Scope][]appoutbox.EventRecord)
	}
	o.pending[scope] = append(o.pending[scope], record)
	return nil
}

// Flush publishes the records of ctx's scope after any left from failed flushes.
// It never fails the caller.
func (o *Outbox) Flush(ctx context.Context) error {
	scope := appoutbox.ScopeOf(ctx)
	o.mu.Lock()
	batch := append(o.retry, o.pending[scope]...)
	o.retry = nil
	delete(o.pending, scope)
	o.mu.Unlock()

	for i, rec := range batch {
		if err := o.publish(ctx, rec); err != nil {
			o.requeue(batch[i:])
			if o.Logger != nil {
				o.Logger.WarnContext(ctx, "outbox publish failed, records kept for retry", "event", rec.Name, "pending", len(batch)-i, "error", err)
			}
			return nil
		}
		o.mu.Lock()
		o.published = append(o.published, rec)
		o.mu.Unlock()
	}
	return nil
}

func (o *Outbox) Discard(ctx context.Context) {
	scope := appoutbox.ScopeOf(ctx)
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, scope)
}

// Published returns every record flushed so far.
func (o *Outbox) Published() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.published...)
}

// Retrying returns the records waiting for the next flush after a failed publish.
func (o *Outbox) Retrying() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.retry...)
}

func (o *Outbox) publish(ctx context.Context, rec appoutbox.EventRecord) error {
	if o.Publisher != nil {
		return o.Publisher.PublishRecord(ctx, rec)
	}
	if o.Logger != nil {
		o.Logger.InfoContext(ctx, "domain event", "event", rec.Name, "aggregate_id", rec.Aggregate, "event_id", rec.ID)
	}
	return nil
}

func (o *Outbox) requeue(records []appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retry = append(append([]appoutbox.EventRecord(nil), records...), o.retry...)
}

var (
	_ appoutbox.Outbox    = (*Outbox)(nil)
	_ appoutbox.Discarder = (*Outbox)(nil)
)
