package banners

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/memberportal/planinfo/internal/domain/coverage"
	"github.com/memberportal/planinfo/internal/platform/metrics"
)

type Service struct {
	banners BannerRepository
	rules   *RuleEngine
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(banners BannerRepository, rules *RuleEngine, logger zerolog.Logger) *Service {
	return &Service{banners: banners, rules: rules, logger: logger}
}

func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// Create validates b and stores it. A rule that does not compile is rejected.
func (s *Service) Create(ctx context.Context, b *Banner) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" && strings.TrimSpace(b.Message) == "" {
		return fmt.Errorf("title or message is required")
	}
	if !validLocations[b.Location] {
		return fmt.Errorf("invalid location: %s", b.Location)
	}
	if b.Type == "" {
		b.Type = "info"
	}
	if !validTypes[b.Type] {
		return fmt.Errorf("invalid type: %s", b.Type)
	}
	if b.Format == "" {
		b.Format = "text"
	}
	if !validFormats[b.Format] {
		return fmt.Errorf("invalid format: %s", b.Format)
	}
	b.GroupNumber = strings.TrimSpace(b.GroupNumber)
	b.Rule = strings.TrimSpace(b.Rule)
	if b.Rule != "" {
		if _, err := s.rules.Compile(b.Rule); err != nil {
			return err
		}
	}
	return s.banners.Create(ctx, b)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.banners.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Banner, int, error) {
	return s.banners.List(ctx, limit, offset)
}

// ForMember returns the active banners shown to plan's member, by location.
// Banners whose rule fails to evaluate are left out.
func (s *Service) ForMember(ctx context.Context, plan *coverage.MemberPlan) (*Placement, error) {
	out := newPlacement()
	if plan == nil {
		return out, nil
	}
	items, err := s.banners.ListActive(ctx, plan.GroupNumber)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	for _, b := range items {
		if !b.Active || (b.GroupNumber != "" && b.GroupNumber != plan.GroupNumber) {
			continue
		}
		ok, err := s.rules.Matches(b.Rule, plan)
		if err != nil {
			s.metrics.IncBannerRuleError()
			s.logger.Warn().Err(err).Str("banner_id", b.ID.String()).Msg("banner rule failed, hiding banner")
			continue
		}
		if ok {
			out.add(*b)
		}
	}
	return out, nil
}
