package banners

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memberportal/planinfo/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type bannerRepoPG struct{ pool *pgxpool.Pool }

func NewBannerRepoPG(pool *pgxpool.Pool) BannerRepository { return &bannerRepoPG{pool: pool} }

func (r *bannerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bannerCols = `id, title, message, type, format, location, active, group_number, rule, created_at`

func (r *bannerRepoPG) scanBanner(row pgx.Row) (*Banner, error) {
	var b Banner
	err := row.Scan(&b.ID, &b.Title, &b.Message, &b.Type, &b.Format, &b.Location,
		&b.Active, &b.GroupNumber, &b.Rule, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bannerRepoPG) Create(ctx context.Context, b *Banner) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO banners (id, title, message, type, format, location, active, group_number, rule)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		b.ID, b.Title, b.Message, b.Type, b.Format, b.Location, b.Active, b.GroupNumber, b.Rule,
	).Scan(&b.CreatedAt)
}

func (r *bannerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bannerRepoPG) List(ctx context.Context, limit, offset int) ([]*Banner, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM banners`).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx, `SELECT `+bannerCols+` FROM banners ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	return items, total, err
}

func (r *bannerRepoPG) ListActive(ctx context.Context, groupNumber string) ([]*Banner, error) {
	return r.list(ctx, `
		SELECT `+bannerCols+` FROM banners
		WHERE active AND (group_number = '' OR group_number = $1)
		ORDER BY created_at, id`, groupNumber)
}

func (r *bannerRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Banner, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Banner
	for rows.Next() {
		b, err := r.scanBanner(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
