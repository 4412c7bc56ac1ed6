package coverage

import (
	"context"
	"errors"

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

// =========== Member Plan Repository ===========

type memberPlanRepoPG struct{ pool *pgxpool.Pool }

func NewMemberPlanRepoPG(pool *pgxpool.Pool) MemberPlanRepository {
	return &memberPlanRepoPG{pool: pool}
}

func (r *memberPlanRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const planCols = `member_id, plan_identifier, line_of_business, is_medicaid, is_msho,
	product_id, plan_name, group_number, group_name, client_id, maxis_id,
	subscriber_id, first_name, last_name, date_of_birth,
	coverage_start, coverage_end, network, customer_service_phone, updated_at`

func (r *memberPlanRepoPG) scanPlan(row pgx.Row) (*MemberPlan, error) {
	var p MemberPlan
	err := row.Scan(&p.MemberID, &p.PlanIdentifier, &p.LineOfBusiness, &p.IsMedicaid, &p.IsMSHO,
		&p.ProductID, &p.PlanName, &p.GroupNumber, &p.GroupName, &p.ClientID, &p.MaxisID,
		&p.SubscriberID, &p.FirstName, &p.LastName, &p.DateOfBirth,
		&p.CoverageStart, &p.CoverageEnd, &p.Network, &p.CustomerServicePhone, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *memberPlanRepoPG) Get(ctx context.Context, memberID, planIdentifier string) (*MemberPlan, error) {
	return r.scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM member_plans WHERE member_id = $1 AND plan_identifier = $2`,
		memberID, planIdentifier))
}

func (r *memberPlanRepoPG) Upsert(ctx context.Context, p *MemberPlan) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO member_plans (member_id, plan_identifier, line_of_business, is_medicaid, is_msho,
			product_id, plan_name, group_number, group_name, client_id, maxis_id,
			subscriber_id, first_name, last_name, date_of_birth,
			coverage_start, coverage_end, network, customer_service_phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (member_id, plan_identifier) DO UPDATE SET
			line_of_business = EXCLUDED.line_of_business, is_medicaid = EXCLUDED.is_medicaid,
			is_msho = EXCLUDED.is_msho, product_id = EXCLUDED.product_id, plan_name = EXCLUDED.plan_name,
			group_number = EXCLUDED.group_number, group_name = EXCLUDED.group_name,
			client_id = EXCLUDED.client_id, maxis_id = EXCLUDED.maxis_id,
			subscriber_id = EXCLUDED.subscriber_id, first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name, date_of_birth = EXCLUDED.date_of_birth,
			coverage_start = EXCLUDED.coverage_start, coverage_end = EXCLUDED.coverage_end,
			network = EXCLUDED.network, customer_service_phone = EXCLUDED.customer_service_phone,
			updated_at = NOW()
		RETURNING updated_at`,
		p.MemberID, p.PlanIdentifier, p.LineOfBusiness, p.IsMedicaid, p.IsMSHO,
		p.ProductID, p.PlanName, p.GroupNumber, p.GroupName, p.ClientID, p.MaxisID,
		p.SubscriberID, p.FirstName, p.LastName, p.DateOfBirth,
		p.CoverageStart, p.CoverageEnd, p.Network, p.CustomerServicePhone).Scan(&p.UpdatedAt)
}

func (r *memberPlanRepoPG) DeleteByMember(ctx context.Context, memberID string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM member_plans WHERE member_id = $1`, memberID)
	return err
}

// =========== Member Coverage Repository ===========

type memberCoverageRepoPG struct{ pool *pgxpool.Pool }

func NewMemberCoverageRepoPG(pool *pgxpool.Pool) MemberCoverageRepository {
	return &memberCoverageRepoPG{pool: pool}
}

func (r *memberCoverageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *memberCoverageRepoPG) Get(ctx context.Context, memberID string) (*MemberCoverage, error) {
	var mc MemberCoverage
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT member_id, bundle, patient, network, customer_service_phone, updated_at
		FROM coverage_bundles WHERE member_id = $1`, memberID).
		Scan(&mc.MemberID, &mc.Bundle, &mc.Patient, &mc.Network, &mc.CustomerServicePhone, &mc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mc, nil
}

func (r *memberCoverageRepoPG) Upsert(ctx context.Context, mc *MemberCoverage) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO coverage_bundles (member_id, bundle, patient, network, customer_service_phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (member_id) DO UPDATE SET
			bundle = EXCLUDED.bundle, patient = EXCLUDED.patient, network = EXCLUDED.network,
			customer_service_phone = EXCLUDED.customer_service_phone, updated_at = NOW()
		RETURNING updated_at`,
		mc.MemberID, mc.Bundle, mc.Patient, mc.Network, mc.CustomerServicePhone).Scan(&mc.UpdatedAt)
}
