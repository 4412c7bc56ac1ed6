package benefits

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/memberportal/planinfo/internal/domain/coverage"
	"github.com/memberportal/planinfo/internal/platform/db"
	"github.com/memberportal/planinfo/internal/platform/metrics"
)

const upstreamService = "benefit-booklets"

// PlanSource resolves plan context and booklet requests for a member.
// *coverage.Service satisfies it.
type PlanSource interface {
	MemberPlan(ctx context.Context, memberID, planIdentifier string) (*coverage.MemberPlan, error)
	BookletRequest(ctx context.Context, plan *coverage.MemberPlan, lob coverage.LineOfBusiness) (*coverage.BookletRequest, error)
}

type Service struct {
	booklets        BookletRepository
	plans           PlanSource
	fetcher         BookletFetcher
	cache           *BookletCache
	tx              db.Beginner
	window          RenewalWindow
	handbookBaseURL string
	metrics         *metrics.Metrics
	logger          zerolog.Logger
	now             func() time.Time
}

// NewService builds the booklet service with the default renewal window.
// fetcher may be nil when no upstream is configured.
func NewService(booklets BookletRepository, plans PlanSource, fetcher BookletFetcher, logger zerolog.Logger) *Service {
	return &Service{
		booklets:        booklets,
		plans:           plans,
		fetcher:         fetcher,
		window:          DefaultRenewalWindow,
		handbookBaseURL: DefaultHandbookBaseURL,
		logger:          logger,
		now:             time.Now,
	}
}

// SetCache attaches a booklet cache.
func (s *Service) SetCache(c *BookletCache) { s.cache = c }

// SetTxBeginner makes RefreshBooklets store its results in one transaction.
func (s *Service) SetTxBeginner(b db.Beginner) { s.tx = b }

// SetRenewalWindow overrides DefaultRenewalWindow.
func (s *Service) SetRenewalWindow(w RenewalWindow) { s.window = w }

// SetHandbookBaseURL overrides DefaultHandbookBaseURL.
func (s *Service) SetHandbookBaseURL(u string) {
	if u != "" {
		s.handbookBaseURL = u
	}
}

// SetMetrics attaches metrics; a nil value disables them.
func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// Window returns the renewal window in effect.
func (s *Service) Window() RenewalWindow { return s.window }

// Available returns the booklet content stored for memberID.
func (s *Service) Available(ctx context.Context, memberID string) (AvailableBooklets, error) {
	if a, ok := s.cache.Get(ctx, memberID); ok {
		return a, nil
	}
	items, err := s.booklets.ListByMember(ctx, memberID)
	if err != nil {
		return AvailableBooklets{}, fmt.Errorf("list booklets: %w", err)
	}
	var a AvailableBooklets
	for _, b := range items {
		a.Set(b.Kind, b.Content)
	}
	s.cache.Put(ctx, memberID, a)
	return a, nil
}

// Documents returns the ordered documents offered to the member on plan.
func (s *Service) Documents(ctx context.Context, plan *coverage.MemberPlan) ([]BenefitDocument, error) {
	if plan == nil {
		return []BenefitDocument{}, nil
	}
	var available AvailableBooklets
	if !plan.IsMedicaid {
		var err error
		if available, err = s.Available(ctx, plan.MemberID); err != nil {
			return nil, err
		}
	}
	docs := s.window.SelectDocuments(plan, available, s.now())
	for i := range docs {
		docs[i].Href = href(docs[i])
	}
	return docs, nil
}

func href(d BenefitDocument) string {
	if d.Content.Redirect != nil {
		return "/api/v1/booklets/handbook/" + string(d.YearTag)
	}
	if d.YearTag == YearNext {
		return "/api/v1/booklets/" + string(d.Kind) + "/pdf?year=" + string(YearNext)
	}
	return "/api/v1/booklets/" + string(d.Kind) + "/pdf"
}

// DocumentsForMember resolves the member's plan before selecting documents.
func (s *Service) DocumentsForMember(ctx context.Context, memberID, planIdentifier string) ([]BenefitDocument, error) {
	plan, err := s.plans.MemberPlan(ctx, memberID, planIdentifier)
	if err != nil {
		return nil, err
	}
	return s.Documents(ctx, plan)
}

// PDF decodes the inline document of kind offered on the member's plan. It
// returns ErrBookletNotAvailable when no such document is offered and
// ErrInvalidPayload when the stored content is not base64.
func (s *Service) PDF(ctx context.Context, memberID, planIdentifier string, kind Kind) ([]byte, error) {
	docs, err := s.DocumentsForMember(ctx, memberID, planIdentifier)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.Kind != kind || d.Content.Inline == "" {
			continue
		}
		pdf, err := DecodeContent(d.Content.Inline)
		if err != nil {
			return nil, err
		}
		s.metrics.IncDocumentServed(string(kind), "inline")
		return pdf, nil
	}
	return nil, ErrBookletNotAvailable
}

// HandbookURL resolves the handbook redirect for tag on a Medicaid plan.
func (s *Service) HandbookURL(ctx context.Context, memberID, planIdentifier string, tag YearTag) (string, error) {
	docs, err := s.DocumentsForMember(ctx, memberID, planIdentifier)
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if r := d.Content.Redirect; r != nil && r.YearTag == tag {
			s.metrics.IncDocumentServed(string(KindMemberHandbook), "redirect")
			return HandbookURL(s.handbookBaseURL, r.ProductID, r.YearTag), nil
		}
	}
	return "", ErrBookletNotAvailable
}

// DecodeContent decodes a base64 PDF payload, tolerating surrounding
// whitespace and a data URI prefix.
func DecodeContent(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, ";base64,"); i >= 0 && strings.HasPrefix(content, "data:") {
		content = content[i+len(";base64,"):]
	}
	if content == "" {
		return nil, ErrBookletNotAvailable
	}
	pdf, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return pdf, nil
}

// RefreshBooklets fetches every booklet kind for the member's plan from the
// benefit-document service and stores what came back in one transaction. An
// upstream failure suppresses only that kind; previously stored content for
// it is kept.
func (s *Service) RefreshBooklets(ctx context.Context, memberID, planIdentifier string) (*RefreshResult, error) {
	if s.fetcher == nil {
		return nil, ErrUpstreamDisabled
	}
	plan, err := s.plans.MemberPlan(ctx, memberID, planIdentifier)
	if err != nil {
		return nil, err
	}
	result := &RefreshResult{Refreshed: []Kind{}, Empty: []Kind{}, Failed: []Kind{}}
	if plan.IsMedicaid {
		return result, nil
	}

	var fetched []*Booklet
	for _, kind := range BookletKinds {
		req, err := s.plans.BookletRequest(ctx, plan, requestLOB(kind))
		if err != nil {
			return nil, fmt.Errorf("build %s booklet request: %w", kind, err)
		}
		content, err := s.fetcher.Fetch(ctx, kind, req)
		if err != nil {
			s.logger.Warn().Err(err).Str("member_id", memberID).Str("kind", string(kind)).Msg("failed to fetch benefit booklet")
			s.metrics.IncUpstreamFailure(upstreamService)
			result.Failed = append(result.Failed, kind)
			continue
		}
		if strings.TrimSpace(content) == "" {
			result.Empty = append(result.Empty, kind)
		}
		fetched = append(fetched, &Booklet{MemberID: memberID, Kind: kind, Content: content})
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		for _, b := range fetched {
			if err := s.booklets.Upsert(ctx, b); err != nil {
				return fmt.Errorf("store %s booklet: %w", b.Kind, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, memberID)

	for _, b := range fetched {
		if strings.TrimSpace(b.Content) != "" {
			result.Refreshed = append(result.Refreshed, b.Kind)
		}
	}
	return result, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.tx, fn)
}

// requestLOB maps a booklet kind to the coverage it is requested for. The
// SBC accompanies the medical plan.
func requestLOB(kind Kind) coverage.LineOfBusiness {
	switch kind {
	case KindDental:
		return coverage.LOBDental
	case KindVision:
		return coverage.LOBVision
	}
	return coverage.LOBMedical
}
