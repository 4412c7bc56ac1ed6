package banners

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/memberportal/planinfo/internal/domain/coverage"
	"github.com/memberportal/planinfo/internal/platform/metrics"
)

// -- Mock Repository --

type mockBannerRepo struct {
	items []*Banner
	clock time.Time
	err   error
}

func newMockBannerRepo() *mockBannerRepo {
	return &mockBannerRepo{clock: time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *mockBannerRepo) Create(_ context.Context, b *Banner) error {
	b.ID = uuid.New()
	m.clock = m.clock.Add(time.Minute)
	b.CreatedAt = m.clock
	m.items = append(m.items, b)
	return nil
}

func (m *mockBannerRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, b := range m.items {
		if b.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockBannerRepo) List(_ context.Context, limit, offset int) ([]*Banner, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	if offset >= len(m.items) {
		return []*Banner{}, len(m.items), nil
	}
	end := offset + limit
	if end > len(m.items) {
		end = len(m.items)
	}
	return m.items[offset:end], len(m.items), nil
}

// ListActive returns every banner so the service's own filtering is exercised.
func (m *mockBannerRepo) ListActive(_ context.Context, _ string) ([]*Banner, error) {
	return m.items, m.err
}

func newTestService(t *testing.T) (*Service, *mockBannerRepo) {
	t.Helper()
	repo := newMockBannerRepo()
	return NewService(repo, newTestEngine(t), zerolog.Nop()), repo
}

func titles(bs []Banner) []string {
	out := []string{}
	for _, b := range bs {
		out = append(out, b.Title)
	}
	return out
}

func TestService_Create(t *testing.T) {
	svc, repo := newTestService(t)
	b := &Banner{Title: " Open enrollment ", Location: LocationTop}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Title != "Open enrollment" || b.Type != "info" || b.Format != "text" {
		t.Errorf("expected normalized banner, got %+v", b)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected 1 stored banner, got %d", len(repo.items))
	}
}

func TestService_Create_Invalid(t *testing.T) {
	svc, repo := newTestService(t)
	tests := []struct {
		name string
		b    Banner
	}{
		{"empty", Banner{Location: LocationTop}},
		{"location", Banner{Title: "x", Location: "sidebar"}},
		{"type", Banner{Title: "x", Location: LocationEnd, Type: "loud"}},
		{"format", Banner{Title: "x", Location: LocationEnd, Format: "pdf"}},
		{"rule", Banner{Title: "x", Location: LocationEnd, Rule: "plan.is_medicaid &&"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.b
			if err := svc.Create(context.Background(), &b); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(repo.items) != 0 {
		t.Errorf("expected nothing stored, got %d", len(repo.items))
	}

	b := Banner{Title: "x", Location: LocationTop, Rule: "plan.is_medicaid &&"}
	if err := svc.Create(context.Background(), &b); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
}

func TestService_ForMember(t *testing.T) {
	svc, _ := newTestService(t)
	m := metrics.New(prometheus.NewRegistry())
	svc.SetMetrics(m)
	ctx := context.Background()

	create := func(b Banner) {
		t.Helper()
		if err := svc.Create(ctx, &b); err != nil {
			t.Fatalf("create %s: %v", b.Title, err)
		}
	}
	create(Banner{Title: "all-top", Location: LocationTop, Active: true})
	create(Banner{Title: "g1-middle", Location: LocationMiddle, Active: true, GroupNumber: "G1"})
	create(Banner{Title: "g2-top", Location: LocationTop, Active: true, GroupNumber: "G2"})
	create(Banner{Title: "inactive", Location: LocationTop})
	create(Banner{Title: "medicaid-end", Location: LocationEnd, Active: true, Rule: "plan.is_medicaid"})
	create(Banner{Title: "broken-end", Location: LocationEnd, Active: true, Rule: `plan.missing == "x"`})
	create(Banner{Title: "dental-top", Location: LocationTop, Active: true, Rule: `plan.line_of_business == "dental"`})
	create(Banner{Title: "second-top", Location: LocationTop, Active: true})

	got, err := svc.ForMember(ctx, &coverage.MemberPlan{GroupNumber: "G1", IsMedicaid: true, LineOfBusiness: coverage.LOBMedical})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"all-top", "second-top"}, titles(got.Top)); diff != "" {
		t.Errorf("top mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"g1-middle"}, titles(got.Middle)); diff != "" {
		t.Errorf("middle mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"medicaid-end"}, titles(got.End)); diff != "" {
		t.Errorf("end mismatch (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(m.BannerRuleErrors); got != 1 {
		t.Errorf("expected 1 rule error, got %v", got)
	}
}

func TestService_ForMember_NilPlanAndErrors(t *testing.T) {
	svc, repo := newTestService(t)
	got, err := svc.ForMember(context.Background(), nil)
	if err != nil || got.Len() != 0 || got.Top == nil {
		t.Errorf("expected empty placement, got %+v, %v", got, err)
	}

	repo.err = errors.New("db down")
	if _, err := svc.ForMember(context.Background(), &coverage.MemberPlan{}); err == nil {
		t.Error("expected repository error")
	}
}

func TestService_Delete(t *testing.T) {
	svc, repo := newTestService(t)
	b := &Banner{Title: "x", Location: LocationTop}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.items) != 0 {
		t.Error("expected banner removed")
	}
	if err := svc.Delete(context.Background(), b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
