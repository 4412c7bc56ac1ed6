package claims

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/memberportal/planinfo/internal/platform/db"
	"github.com/memberportal/planinfo/internal/platform/metrics"
	"github.com/memberportal/planinfo/pkg/pagination"
)

const (
	DefaultLookbackMonths  = 24
	DefaultPageSizeFull    = 10
	DefaultPageSizeCompact = 5
)

var validViews = map[View]bool{ViewFull: true, ViewCompact: true}

type Service struct {
	claims          ClaimRepository
	eobs            EOBRepository
	tx              db.Beginner
	lookbackMonths  int
	pageSizeFull    int
	pageSizeCompact int
	metrics         *metrics.Metrics
	logger          zerolog.Logger
	now             func() time.Time
}

func NewService(claims ClaimRepository, eobs EOBRepository, logger zerolog.Logger) *Service {
	return &Service{
		claims:          claims,
		eobs:            eobs,
		lookbackMonths:  DefaultLookbackMonths,
		pageSizeFull:    DefaultPageSizeFull,
		pageSizeCompact: DefaultPageSizeCompact,
		logger:          logger,
		now:             time.Now,
	}
}

// SetLookbackMonths sets how far back claims are listed. Non-positive values are ignored.
func (s *Service) SetLookbackMonths(n int) {
	if n > 0 {
		s.lookbackMonths = n
	}
}

// SetPageSizes sets the page sizes of the full and compact views.
func (s *Service) SetPageSizes(full, compact int) {
	if full > 0 {
		s.pageSizeFull = full
	}
	if compact > 0 {
		s.pageSizeCompact = compact
	}
}

func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

func (s *Service) SetTxBeginner(b db.Beginner) { s.tx = b }

// Window returns the inclusive date range of listed claims, ending today.
func (s *Service) Window() (from, to time.Time) {
	to = dateOnly(s.now())
	return to.AddDate(0, -s.lookbackMonths, 0), to
}

// PageSize returns the page size for view.
func (s *Service) PageSize(view View) int {
	if view == ViewCompact {
		return s.pageSizeCompact
	}
	return s.pageSizeFull
}

// List returns one page of the member's claims in the look-back window.
// The full view applies q.Filters and reports filter options; the compact
// view ignores filters.
func (s *Service) List(ctx context.Context, memberID string, q ListQuery) (*ListResult, error) {
	if memberID == "" {
		return nil, fmt.Errorf("member id is required")
	}
	if q.View == "" {
		q.View = ViewFull
	}
	if !validViews[q.View] {
		return nil, fmt.Errorf("invalid view: %s", q.View)
	}

	from, to := s.Window()
	all, err := s.claims.ListByMember(ctx, memberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	filtered := all
	var options *FilterOptions
	if q.View == ViewFull {
		for _, f := range q.Filters {
			s.metrics.IncFilterApplied(f.Kind.String(), f.Known())
			if !f.Known() {
				s.logger.Debug().Str("title", f.Title).Str("member_id", memberID).Msg("skipping unknown claims filter")
			}
		}
		filtered = ApplyFilters(all, q.Filters, to)
		options = BuildFilterOptions(all)
	}

	size := s.PageSize(q.View)
	page := pagination.Paginate(filtered, size, q.Page)
	return &ListResult{
		Claims:       page.Items,
		Page:         q.Page,
		PageCount:    page.PageCount,
		PageSize:     size,
		Total:        len(filtered),
		WindowMonths: s.lookbackMonths,
		Options:      options,
	}, nil
}

// EOBPDF returns the decoded explanation-of-benefits PDF for a claim.
func (s *Service) EOBPDF(ctx context.Context, memberID, claimNumber string) ([]byte, error) {
	e, err := s.eobs.Get(ctx, memberID, strings.TrimSpace(claimNumber))
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(e.Content)
	if content == "" {
		return nil, ErrNotFound
	}
	pdf, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	s.metrics.IncDocumentServed("eob", "inline")
	return pdf, nil
}

// IngestClaims stores a batch of claims for a member in one transaction.
func (s *Service) IngestClaims(ctx context.Context, memberID string, batch []Claim) error {
	for i := range batch {
		c := &batch[i]
		if strings.TrimSpace(c.ClaimNumber) == "" {
			return fmt.Errorf("claim %d: claim_number is required", i)
		}
		if c.ServiceDate.IsZero() {
			return fmt.Errorf("claim %s: service_date is required", c.ClaimNumber)
		}
		c.MemberID = memberID
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		for i := range batch {
			if err := s.claims.Upsert(ctx, &batch[i]); err != nil {
				return fmt.Errorf("store claim %s: %w", batch[i].ClaimNumber, err)
			}
		}
		return nil
	})
}

// PutEOB stores the base64 EOB PDF for a claim.
func (s *Service) PutEOB(ctx context.Context, e *EOB) error {
	if e.ClaimNumber == "" {
		return fmt.Errorf("claim_number is required")
	}
	if _, err := base64.StdEncoding.DecodeString(strings.TrimSpace(e.Content)); err != nil || strings.TrimSpace(e.Content) == "" {
		return ErrInvalidPayload
	}
	return s.eobs.Upsert(ctx, e)
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.tx, fn)
}
