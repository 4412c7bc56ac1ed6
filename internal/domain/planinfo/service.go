package planinfo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/memberportal/planinfo/internal/domain/banners"
	"github.com/memberportal/planinfo/internal/domain/benefits"
	"github.com/memberportal/planinfo/internal/domain/claims"
	"github.com/memberportal/planinfo/internal/domain/coverage"
)

type PlanSource interface {
	MemberPlan(ctx context.Context, memberID, planIdentifier string) (*coverage.MemberPlan, error)
}

type DocumentSource interface {
	Documents(ctx context.Context, plan *coverage.MemberPlan) ([]benefits.BenefitDocument, error)
	Window() benefits.RenewalWindow
}

type ClaimsSource interface {
	List(ctx context.Context, memberID string, q claims.ListQuery) (*claims.ListResult, error)
}

type BannerSource interface {
	ForMember(ctx context.Context, plan *coverage.MemberPlan) (*banners.Placement, error)
}

// Service composes the plan information page from the per-section services.
type Service struct {
	plans     PlanSource
	documents DocumentSource
	claims    ClaimsSource
	banners   BannerSource
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(plans PlanSource, documents DocumentSource, claimsSrc ClaimsSource, bannerSrc BannerSource, logger zerolog.Logger) *Service {
	return &Service{
		plans:     plans,
		documents: documents,
		claims:    claimsSrc,
		banners:   bannerSrc,
		logger:    logger,
		now:       time.Now,
	}
}

// Page builds the page for the member's selected plan. Only a plan lookup
// failure is returned as an error; other sections degrade into Issues.
func (s *Service) Page(ctx context.Context, memberID, planIdentifier string) (*Page, error) {
	plan, err := s.plans.MemberPlan(ctx, memberID, planIdentifier)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Plan:              plan,
		RenewalWindowOpen: s.documents.Window().Contains(s.now()),
		Documents:         []benefits.BenefitDocument{},
		Banners:           &banners.Placement{Top: []banners.Banner{}, Middle: []banners.Banner{}, End: []banners.Banner{}},
		Issues:            []Issue{},
	}

	var mu sync.Mutex
	// degrade records a failed section. A caller that has gone away fails the
	// whole page instead, which also cancels the sections still running.
	degrade := func(section Section, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Warn().Err(err).Str("member_id", memberID).Str("section", string(section)).Msg("plan information section unavailable")
		mu.Lock()
		page.Issues = append(page.Issues, Issue{Section: section, Message: err.Error()})
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.documents.Documents(gctx, plan)
		if err != nil {
			return degrade(SectionDocuments, err)
		}
		page.Documents = docs
		return nil
	})
	g.Go(func() error {
		preview, err := s.claims.List(gctx, memberID, claims.ListQuery{View: claims.ViewCompact})
		if err != nil {
			return degrade(SectionClaims, err)
		}
		page.Claims = preview
		return nil
	})
	g.Go(func() error {
		placement, err := s.banners.ForMember(gctx, plan)
		if err != nil {
			return degrade(SectionBanners, err)
		}
		page.Banners = placement
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortIssues(page.Issues)
	return page, nil
}

var sectionOrder = map[Section]int{SectionDocuments: 0, SectionClaims: 1, SectionBanners: 2}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return sectionOrder[issues[i].Section] < sectionOrder[issues[j].Section]
	})
}
