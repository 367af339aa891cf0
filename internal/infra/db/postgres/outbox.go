package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appoutbox "bookingengine/internal/app/outbox"
	infraoutbox "bookingengine/internal/infra/outbox"
)

const (
	outboxNew     = "NEW"
	outboxClaimed = "CLAIMED"
	outboxSent    = "SENT"
	outboxFailed  = "FAILED"
)

const claimTimeout = time.Minute

// Outbox writes event records through the transaction carried by ctx and
// hands them to the delivery worker with FOR UPDATE SKIP LOCKED.
type Outbox struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewOutbox(pool *pgxpool.Pool) *Outbox {
	return &Outbox{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := o.now()
	headers := record.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	query, args, err := psql.Insert("outbox").
		Columns("id", "name", "aggregate", "payload", "headers", "occurred_at", "state", "next_attempt_at", "created_at").
		Values(record.ID, record.Name, record.Aggregate, record.Payload, headers, record.OccurredAt, outboxNew, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert failed: %w", err)
	}
	if _, err := conn(ctx, o.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert outbox record failed: %w", err)
	}
	return nil
}

// Flush is a no-op: rows become visible to the worker on commit.
func (o *Outbox) Flush(context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	query, args, err := claimSQL(workerID, o.now())
	if err != nil {
		return nil, fmt.Errorf("build outbox claim failed: %w", err)
	}
	var msg infraoutbox.Message
	err = o.pool.QueryRow(ctx, query, args...).Scan(
		&msg.ID, &msg.Name, &msg.Aggregate, &msg.Payload, &msg.Headers, &msg.OccurredAt, &msg.Attempts,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim outbox record failed: %w", err)
	}
	return &msg, nil
}

func claimSQL(workerID string, now time.Time) (string, []any, error) {
	due := psql.Select("id").
		From("outbox").
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"state": []string{outboxNew, outboxFailed}},
				squirrel.LtOrEq{"next_attempt_at": now},
			},
			squirrel.And{
				squirrel.Eq{"state": outboxClaimed},
				squirrel.LtOrEq{"claimed_at": now.Add(-claimTimeout)},
			},
		}).
		OrderBy("next_attempt_at").
		Limit(1).
		Suffix("FOR UPDATE SKIP LOCKED")
	return psql.Update("outbox").
		Set("state", outboxClaimed).
		Set("claimed_by", workerID).
		Set("claimed_at", now).
		Where(due.Prefix("id = (").Suffix(")")).
		Suffix("RETURNING id, name, aggregate, payload, headers, occurred_at, attempts").
		ToSql()
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	query, args, err := psql.Update("outbox").
		Set("state", outboxSent).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox update failed: %w", err)
	}
	_, err = o.pool.Exec(ctx, query, args...)
	return err
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	query, args, err := psql.Update("outbox").
		Set("state", outboxFailed).
		Set("next_attempt_at", next).
		Set("last_error", errMsg).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox update failed: %w", err)
	}
	_, err = o.pool.Exec(ctx, query, args...)
	return err
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Queue = (*Outbox)(nil)
)
