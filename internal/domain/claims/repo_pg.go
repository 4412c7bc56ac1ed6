package claims

import (
	"context"
	"errors"
	"time"

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

// =========== Claim Repository ===========

type claimRepoPG struct{ pool *pgxpool.Pool }

func NewClaimRepoPG(pool *pgxpool.Pool) ClaimRepository { return &claimRepoPG{pool: pool} }

func (r *claimRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const claimCols = `c.id, c.member_id, c.claim_number, c.service_date, c.claim_type, c.status,
	c.provider_name, c.patient_name, c.billed_amount, c.member_responsibility,
	EXISTS (SELECT 1 FROM eob_documents e WHERE e.member_id = c.member_id AND e.claim_number = c.claim_number)`

func (r *claimRepoPG) ListByMember(ctx context.Context, memberID string, from, to time.Time) ([]Claim, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+claimCols+`
		FROM claims c
		WHERE c.member_id = $1 AND c.service_date >= $2 AND c.service_date <= $3
		ORDER BY c.service_date DESC, c.claim_number`, memberID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Claim{}
	for rows.Next() {
		var c Claim
		if err := rows.Scan(&c.ID, &c.MemberID, &c.ClaimNumber, &c.ServiceDate, &c.ClaimType, &c.Status,
			&c.ProviderName, &c.PatientName, &c.BilledAmount, &c.MemberResponsibility, &c.HasEOB); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *claimRepoPG) Upsert(ctx context.Context, c *Claim) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO claims (id, member_id, claim_number, service_date, claim_type, status,
			provider_name, patient_name, billed_amount, member_responsibility)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (member_id, claim_number) DO UPDATE SET
			service_date = EXCLUDED.service_date, claim_type = EXCLUDED.claim_type,
			status = EXCLUDED.status, provider_name = EXCLUDED.provider_name,
			patient_name = EXCLUDED.patient_name, billed_amount = EXCLUDED.billed_amount,
			member_responsibility = EXCLUDED.member_responsibility, updated_at = NOW()
		RETURNING id`,
		c.ID, c.MemberID, c.ClaimNumber, c.ServiceDate, c.ClaimType, c.Status,
		c.ProviderName, c.PatientName, c.BilledAmount, c.MemberResponsibility).Scan(&c.ID)
}

// =========== EOB Repository ===========

type eobRepoPG struct{ pool *pgxpool.Pool }

func NewEOBRepoPG(pool *pgxpool.Pool) EOBRepository { return &eobRepoPG{pool: pool} }

func (r *eobRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *eobRepoPG) Get(ctx context.Context, memberID, claimNumber string) (*EOB, error) {
	var e EOB
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT member_id, claim_number, content, created_at
		FROM eob_documents WHERE member_id = $1 AND claim_number = $2`, memberID, claimNumber).
		Scan(&e.MemberID, &e.ClaimNumber, &e.Content, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eobRepoPG) Upsert(ctx context.Context, e *EOB) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO eob_documents (member_id, claim_number, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id, claim_number) DO UPDATE SET content = EXCLUDED.content, created_at = NOW()
		RETURNING created_at`,
		e.MemberID, e.ClaimNumber, e.Content).Scan(&e.CreatedAt)
}
