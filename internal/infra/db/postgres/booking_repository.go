package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/infra/db/records"
)

// BookingRepository stores each booking as a JSONB document next to the
// columns it is queried by. Slot capacity lives in slot_capacity.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	query, args, err := psql.Select("doc").From("bookings").Where(squirrel.Eq{"id": string(id)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}
	var doc records.Booking
	if err := conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return doc.ToDomain()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := records.FromBooking(b)
	doc.Version = b.Version + 1
	query, args, err := saveBookingSQL(doc, b.Version)
	if err != nil {
		return fmt.Errorf("build save booking query failed: %w", err)
	}
	tag, err := conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		if b.Version == 0 && isUniqueViolation(err) {
			return errors.Join(domainbooking.ErrDuplicate, err)
		}
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domainbooking.ErrConcurrentModified
	}
	b.Version = doc.Version
	return nil
}

func saveBookingSQL(doc records.Booking, expected int64) (string, []any, error) {
	if expected == 0 {
		return psql.Insert("bookings").
			Columns("id", "resource_id", "day", "state", "created_at", "version", "doc").
			Values(doc.ID, doc.ResourceID, doc.Date, doc.State, doc.CreatedAt, doc.Version, doc).
			ToSql()
	}
	return psql.Update("bookings").
		Set("state", doc.State).
		Set("version", doc.Version).
		Set("doc", doc).
		Where(squirrel.Eq{"id": doc.ID, "version": expected}).
		ToSql()
}

func (r *BookingRepository) CountForSlot(ctx context.Context, key domainbooking.SlotKey) (int, error) {
	query, args, err := psql.Select("booked").From("slot_capacity").Where(slotWhere(key)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count slot query failed: %w", err)
	}
	var booked int
	if err := conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&booked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count slot failed: %w", err)
	}
	return booked, nil
}

// ReserveSlot takes one unit of capacity in a single statement. The
// conditional upsert returns no row once the slot is full.
func (r *BookingRepository) ReserveSlot(ctx context.Context, key domainbooking.SlotKey, maxBookings int) error {
	if maxBookings <= 0 {
		return domainbooking.ErrCapacityExhausted
	}
	query, args, err := reserveSlotSQL(key, maxBookings)
	if err != nil {
		return fmt.Errorf("build reserve slot query failed: %w", err)
	}
	var booked int
	if err := conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&booked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainbooking.ErrCapacityExhausted
		}
		return mapPgError(err)
	}
	return nil
}

func reserveSlotSQL(key domainbooking.SlotKey, maxBookings int) (string, []any, error) {
	return psql.Insert("slot_capacity").
		Columns("resource_id", "day", "slot_id", "booked").
		Values(string(key.ResourceID), key.Date, string(key.SlotID), 1).
		Suffix("ON CONFLICT (resource_id, day, slot_id) DO UPDATE SET booked = slot_capacity.booked + 1 WHERE slot_capacity.booked < ? RETURNING booked", maxBookings).
		ToSql()
}

func (r *BookingRepository) ReleaseSlot(ctx context.Context, key domainbooking.SlotKey) error {
	query, args, err := psql.Update("slot_capacity").
		Set("booked", squirrel.Expr("booked - 1")).
		Where(slotWhere(key)).
		Where(squirrel.Gt{"booked": 0}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release slot query failed: %w", err)
	}
	if _, err := conn(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

func slotWhere(key domainbooking.SlotKey) squirrel.Eq {
	return squirrel.Eq{
		"resource_id": string(key.ResourceID),
		"day":         key.Date,
		"slot_id":     string(key.SlotID),
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
