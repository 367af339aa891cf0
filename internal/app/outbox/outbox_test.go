package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingengine/internal/domain/shared/events"
)

type sampleEvent struct {
	ID string
	At time.Time
}

func (e sampleEvent) EventName() string     { return "sample.happened" }
func (e sampleEvent) AggregateID() string   { return e.ID }
func (e sampleEvent) OccurredAt() time.Time { return e.At }

type captureOutbox struct{ records []EventRecord }

func (c *captureOutbox) Add(_ context.Context, r EventRecord) error {
	c.records = append(c.records, r)
	return nil
}
func (c *captureOutbox) Flush(context.Context) error { return nil }

func TestJSONEventEncoder(t *testing.T) {
	at := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	rec, err := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }}.Encode(sampleEvent{ID: "agg-1", At: at})
	require.NoError(t, err)

	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "sample.happened", rec.Name)
	assert.Equal(t, "agg-1", rec.Aggregate)
	assert.Equal(t, at, rec.OccurredAt)
	assert.Equal(t, "application/json", rec.Headers[HeaderContentType])

	var decoded sampleEvent
	require.NoError(t, json.Unmarshal(rec.Payload, &decoded))
	assert.Equal(t, "agg-1", decoded.ID)
}

func TestRecordDomainEvents(t *testing.T) {
	box := &captureOutbox{}
	evs := []events.DomainEvent{sampleEvent{ID: "a"}, sampleEvent{ID: "b"}}

	require.NoError(t, RecordDomainEvents(context.Background(), box, nil, evs))
	require.Len(t, box.records, 2)
	assert.Equal(t, "a", box.records[0].Aggregate)
	assert.NotEqual(t, box.records[0].ID, box.records[1].ID)

	assert.NoError(t, RecordDomainEvents(context.Background(), nil, nil, evs))
}
