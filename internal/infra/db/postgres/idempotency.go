package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookingengine/internal/app/middleware"
)

// IdempotencyStore keeps command results in the idempotency table. Rows
// older than ttl are ignored and overwritten on the next save.
type IdempotencyStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

func NewIdempotencyStore(pool *pgxpool.Pool, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{pool: pool, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	sel := psql.Select("key", "command_key", "fingerprint", "payload", "error", "pending", "occurred_at").
		From("idempotency").
		Where(squirrel.Eq{"key": key})
	if s.ttl > 0 {
		sel = sel.Where(squirrel.Gt{"created_at": s.now().Add(-s.ttl)})
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("build idempotency query failed: %w", err)
	}
	var rec middleware.IdempotencyRecord
	err = s.pool.QueryRow(ctx, query, args...).Scan(
		&rec.Key, &rec.CommandKey, &rec.Fingerprint, &rec.Payload, &rec.Error, &rec.Pending, &rec.OccurredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("get idempotency record failed: %w", err)
	}
	return rec, true, nil
}

// Reserve inserts the pending record unless a live row holds the key. A
// row past its ttl is taken over in the same statement.
func (s *IdempotencyStore) Reserve(ctx context.Context, rec middleware.IdempotencyRecord) (bool, error) {
	query, args, err := reserveIdempotencySQL(rec, s.now(), s.ttl)
	if err != nil {
		return false, fmt.Errorf("build idempotency reserve failed: %w", err)
	}
	var key string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("reserve idempotency key failed: %w", err)
	}
	return true, nil
}

func reserveIdempotencySQL(rec middleware.IdempotencyRecord, now time.Time, ttl time.Duration) (string, []any, error) {
	ins := insertIdempotency(rec, now)
	if ttl <= 0 {
		return ins.Suffix("ON CONFLICT (key) DO NOTHING RETURNING key").ToSql()
	}
	return ins.Suffix("ON CONFLICT (key) DO UPDATE SET "+idempotencyUpdates+
		" WHERE idempotency.created_at <= ? RETURNING key", now.Add(-ttl)).ToSql()
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	query, args, err := insertIdempotency(rec, s.now()).
		Suffix("ON CONFLICT (key) DO UPDATE SET " + idempotencyUpdates).
		ToSql()
	if err != nil {
		return fmt.Errorf("build idempotency insert failed: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save idempotency record failed: %w", err)
	}
	return nil
}

const idempotencyUpdates = "command_key = EXCLUDED.command_key, fingerprint = EXCLUDED.fingerprint, " +
	"payload = EXCLUDED.payload, error = EXCLUDED.error, pending = EXCLUDED.pending, " +
	"occurred_at = EXCLUDED.occurred_at, created_at = EXCLUDED.created_at"

func insertIdempotency(rec middleware.IdempotencyRecord, now time.Time) squirrel.InsertBuilder {
	return psql.Insert("idempotency").
		Columns("key", "command_key", "fingerprint", "payload", "error", "pending", "occurred_at", "created_at").
		Values(rec.Key, rec.CommandKey, rec.Fingerprint, rec.Payload, rec.Error, rec.Pending, rec.OccurredAt, now)
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
