package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingengine/internal/app/middleware"
	"bookingengine/internal/app/uow"
	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/infra/db/records"
)

func TestReserveSlotSQL(t *testing.T) {
	key := domainbooking.SlotKey{ResourceID: "kayak-tour", Date: "2026-10-19", SlotID: "10:00"}

	query, args, err := reserveSlotSQL(key, 3)
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO slot_capacity")
	assert.Contains(t, query, "ON CONFLICT (resource_id, day, slot_id)")
	assert.Contains(t, query, "WHERE slot_capacity.booked < $5 RETURNING booked")
	assert.Equal(t, []any{"kayak-tour", "2026-10-19", "10:00", 1, 3}, args)
}

func TestSaveBookingSQL(t *testing.T) {
	doc := records.Booking{ID: "bk-1", ResourceID: "kayak-tour", Date: "2026-10-19", State: "CONFIRMED", Version: 1}

	query, args, err := saveBookingSQL(doc, 0)
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO bookings")
	assert.Len(t, args, 7)

	doc.State = "CANCELLED"
	doc.Version = 3
	query, args, err = saveBookingSQL(doc, 2)
	require.NoError(t, err)
	assert.Contains(t, query, "UPDATE bookings SET state = $1, version = $2, doc = $3")
	assert.Contains(t, query, "version = $5")
	require.Len(t, args, 5)
	assert.Equal(t, int64(2), args[4])
}

func TestReserveIdempotencySQL(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	rec := middleware.IdempotencyRecord{Key: "booking.request:req-1", CommandKey: "booking.request", Pending: true, OccurredAt: now}

	query, args, err := reserveIdempotencySQL(rec, now, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO idempotency")
	assert.Contains(t, query, "pending = EXCLUDED.pending")
	assert.Contains(t, query, "WHERE idempotency.created_at <= $9 RETURNING key")
	require.Len(t, args, 9)
	assert.Equal(t, true, args[5])
	assert.Equal(t, now.Add(-time.Hour), args[8])

	query, args, err = reserveIdempotencySQL(rec, now, 0)
	require.NoError(t, err)
	assert.Contains(t, query, "ON CONFLICT (key) DO NOTHING RETURNING key")
	assert.Len(t, args, 8)
}

func TestClaimSQL(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	query, args, err := claimSQL("worker-1", now)
	require.NoError(t, err)
	assert.Contains(t, query, "UPDATE outbox SET state = $1")
	assert.Contains(t, query, "FOR UPDATE SKIP LOCKED")
	assert.Contains(t, query, "RETURNING id, name, aggregate, payload, headers, occurred_at, attempts")
	assert.NotContains(t, query, "?")
	assert.Contains(t, args, "worker-1")
	assert.Contains(t, args, now.Add(-claimTimeout))
}

func TestMapPgError(t *testing.T) {
	assert.NoError(t, mapPgError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, mapPgError(plain))

	for _, code := range []string{pgerrcode.UniqueViolation, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected} {
		err := mapPgError(&pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domainbooking.ErrConcurrentModified, code)
	}
	assert.NotErrorIs(t, mapPgError(&pgconn.PgError{Code: pgerrcode.NotNullViolation}), domainbooking.ErrConcurrentModified)

	assert.True(t, isUniqueViolation(fmt.Errorf("insert booking: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.SerializationFailure}))
	assert.False(t, isUniqueViolation(plain))
}

func TestFactory_RequiresWiring(t *testing.T) {
	_, err := Factory{}.Begin(context.Background(), uow.TxOptions{})
	require.ErrorIs(t, err, ErrUnitOfWorkNotConfigured)
}
