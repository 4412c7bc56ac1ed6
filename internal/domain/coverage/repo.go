package coverage

import "context"

type MemberPlanRepository interface {
	Get(ctx context.Context, memberID, planIdentifier string) (*MemberPlan, error)
	Upsert(ctx context.Context, p *MemberPlan) error
	DeleteByMember(ctx context.Context, memberID string) error
}

type MemberCoverageRepository interface {
	Get(ctx context.Context, memberID string) (*MemberCoverage, error)
	Upsert(ctx context.Context, mc *MemberCoverage) error
}
