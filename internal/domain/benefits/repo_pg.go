package benefits

import (
	"context"

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

type bookletRepoPG struct{ pool *pgxpool.Pool }

func NewBookletRepoPG(pool *pgxpool.Pool) BookletRepository { return &bookletRepoPG{pool: pool} }

func (r *bookletRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *bookletRepoPG) ListByMember(ctx context.Context, memberID string) ([]*Booklet, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT member_id, kind, content, fetched_at
		FROM benefit_booklets WHERE member_id = $1 ORDER BY kind`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Booklet
	for rows.Next() {
		var b Booklet
		if err := rows.Scan(&b.MemberID, &b.Kind, &b.Content, &b.FetchedAt); err != nil {
			return nil, err
		}
		items = append(items, &b)
	}
	return items, rows.Err()
}

func (r *bookletRepoPG) Upsert(ctx context.Context, b *Booklet) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO benefit_booklets (member_id, kind, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id, kind) DO UPDATE SET content = EXCLUDED.content, fetched_at = NOW()
		RETURNING fetched_at`,
		b.MemberID, b.Kind, b.Content).Scan(&b.FetchedAt)
}
