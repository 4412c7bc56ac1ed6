package coverage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/memberportal/planinfo/internal/platform/db"
)

type Service struct {
	plans     MemberPlanRepository
	coverages MemberCoverageRepository
	tx        db.Beginner
	logger    zerolog.Logger
}

// NewService builds the coverage service. tx may be nil, in which case
// writes run without a surrounding transaction.
func NewService(plans MemberPlanRepository, coverages MemberCoverageRepository, tx db.Beginner, logger zerolog.Logger) *Service {
	return &Service{plans: plans, coverages: coverages, tx: tx, logger: logger}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.tx, fn)
}

// MemberPlan returns the stored plan context, deriving and saving it from the
// member's coverage bundle on first use.
func (s *Service) MemberPlan(ctx context.Context, memberID, planIdentifier string) (*MemberPlan, error) {
	if memberID == "" {
		return nil, fmt.Errorf("member id is required")
	}
	p, err := s.plans.Get(ctx, memberID, planIdentifier)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load member plan: %w", err)
	}

	mc, err := s.coverages.Get(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load coverage bundle: %w", err)
	}
	p, err = ParseMemberPlan(mc, planIdentifier)
	if err != nil {
		return nil, err
	}
	if err := s.plans.Upsert(ctx, p); err != nil {
		s.logger.Warn().Err(err).Str("member_id", memberID).Msg("failed to cache member plan")
	}
	return p, nil
}

// MemberCoverage returns the raw coverage resources stored for a member.
func (s *Service) MemberCoverage(ctx context.Context, memberID string) (*MemberCoverage, error) {
	return s.coverages.Get(ctx, memberID)
}

// IngestCoverage stores a member's coverage bundle and drops any plan
// context derived from the previous bundle.
func (s *Service) IngestCoverage(ctx context.Context, mc *MemberCoverage) error {
	mc.MemberID = strings.TrimSpace(mc.MemberID)
	if mc.MemberID == "" {
		return fmt.Errorf("member id is required: %w", ErrInvalidPayload)
	}
	if mc.Bundle == nil {
		return fmt.Errorf("bundle is required: %w", ErrInvalidPayload)
	}
	if mc.Bundle.ResourceType != "" && mc.Bundle.ResourceType != "Bundle" {
		return fmt.Errorf("unexpected resourceType %q: %w", mc.Bundle.ResourceType, ErrInvalidPayload)
	}
	for i, c := range mc.Bundle.Coverages() {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("entry %d: coverage id is required: %w", i, ErrInvalidPayload)
		}
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.coverages.Upsert(ctx, mc); err != nil {
			return fmt.Errorf("store coverage bundle: %w", err)
		}
		if err := s.plans.DeleteByMember(ctx, mc.MemberID); err != nil {
			return fmt.Errorf("reset member plans: %w", err)
		}
		return nil
	})
}

// BookletRequest builds the benefit-document request for lob from the
// member's stored bundle.
func (s *Service) BookletRequest(ctx context.Context, plan *MemberPlan, lob LineOfBusiness) (*BookletRequest, error) {
	if plan == nil {
		return nil, ErrNotFound
	}
	mc, err := s.coverages.Get(ctx, plan.MemberID)
	if err != nil {
		return nil, fmt.Errorf("load coverage bundle: %w", err)
	}
	return BuildBenefitBookletRequest(plan, mc.Bundle, lob), nil
}
