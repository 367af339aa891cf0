package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/infra/db/records"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

func (r *ResourceRepository) ByID(ctx context.Context, id domainresource.ID) (*domainresource.Resource, error) {
	query, args, err := psql.Select("doc").From("resources").Where(squirrel.Eq{"id": string(id)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource query failed: %w", err)
	}
	var doc records.Resource
	if err := conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainresource.ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return doc.ToDomain()
}

func (r *ResourceRepository) Save(ctx context.Context, res *domainresource.Resource) error {
	if err := res.Validate(); err != nil {
		return err
	}
	doc := records.FromResource(res)
	query, args, err := psql.Insert("resources").
		Columns("id", "doc").
		Values(doc.ID, doc).
		Suffix("ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save resource query failed: %w", err)
	}
	if _, err := conn(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save resource failed: %w", err)
	}
	return nil
}

func (r *ResourceRepository) List(ctx context.Context) ([]*domainresource.Resource, error) {
	query, args, err := psql.Select("doc").From("resources").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list resources query failed: %w", err)
	}
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var out []*domainresource.Resource
	for rows.Next() {
		var doc records.Resource
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan resource failed: %w", err)
		}
		res, err := doc.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

var _ domainresource.Repository = (*ResourceRepository)(nil)
