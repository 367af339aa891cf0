package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "bookingengine/internal/app/outbox"
	"bookingengine/internal/app/uow"
	infraoutbox "bookingengine/internal/infra/outbox"
)

type outboxEntry struct {
	msg       infraoutbox.Message
	next      time.Time
	claimedBy string
}

// Outbox keeps event records in memory until the worker delivers them.
// Records added inside a unit of work are queued only after it commits.
type Outbox struct {
	Now func() time.Time

	mu      sync.Mutex
	entries []*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		unit.AfterCommit(func(context.Context) { o.enqueue(record) })
		return nil
	}
	o.enqueue(record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) enqueue(record appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{
		msg: infraoutbox.Message{
			ID:         record.ID,
			Name:       record.Name,
			Payload:    record.Payload,
			OccurredAt: record.OccurredAt,
			Aggregate:  record.Aggregate,
			Headers:    record.Headers,
		},
		next: o.now(),
	})
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, e := range o.entries {
		if e.claimedBy == "" && !e.next.After(now) {
			e.claimedBy = workerID
			msg := e.msg
			return &msg, nil
		}
	}
	return nil, nil
}

// MarkSent drops the delivered record.
func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, e := range o.entries {
		if e.msg.ID == id {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.msg.ID == id {
			e.claimedBy = ""
			e.next = next
			e.msg.Attempts++
			return nil
		}
	}
	return nil
}

// Pending reports how many records await delivery.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

func (o *Outbox) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Queue = (*Outbox)(nil)
)
