package claims

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var asOf = day(2023, time.October, 16)

func sampleClaims() []Claim {
	return []Claim{
		{ClaimNumber: "C1", ServiceDate: day(2023, time.October, 1), ClaimType: "Medical", Status: "Paid", ProviderName: "North Clinic", PatientName: "Jane Doe", MemberResponsibility: 20},
		{ClaimNumber: "C2", ServiceDate: day(2023, time.August, 20), ClaimType: "Pharmacy", Status: "Denied", ProviderName: "Corner Drug", PatientName: "John Doe", MemberResponsibility: 0},
		{ClaimNumber: "C3", ServiceDate: day(2023, time.March, 5), ClaimType: "Medical", Status: "paid", ProviderName: "Acme Hospital", PatientName: "Jane Doe", MemberResponsibility: 150},
		{ClaimNumber: "C4", ServiceDate: day(2022, time.December, 30), ClaimType: "Dental", Status: "Pending", ProviderName: "Smile Dental", PatientName: "Jane Doe", MemberResponsibility: 75},
		{ClaimNumber: "C5", ServiceDate: day(2021, time.November, 2), ClaimType: "Medical", Status: "Paid", ProviderName: "North Clinic", PatientName: "John Doe", MemberResponsibility: 20},
	}
}

func numbers(claims []Claim) []string {
	out := make([]string, 0, len(claims))
	for _, c := range claims {
		out = append(out, c.ClaimNumber)
	}
	return out
}

func TestApplyFilters_Identity(t *testing.T) {
	in := sampleClaims()
	got := ApplyFilters(in, nil, asOf)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("empty filter set changed claims (-want +got):\n%s", diff)
	}
}

func TestApplyFilters_EmptyInput(t *testing.T) {
	got := ApplyFilters(nil, []Filter{NewFilter("status", "Paid")}, asOf)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestApplyFilters_UnregisteredTitle(t *testing.T) {
	in := sampleClaims()
	got := ApplyFilters(in, []Filter{NewFilter("unregistered", "anything")}, asOf)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("unregistered filter changed claims (-want +got):\n%s", diff)
	}
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	in := sampleClaims()
	before := numbers(in)
	ApplyFilters(in, []Filter{NewFilter("order-by", "amount-desc"), NewFilter("status", "paid")}, asOf)
	if diff := cmp.Diff(before, numbers(in)); diff != "" {
		t.Errorf("input was mutated (-want +got):\n%s", diff)
	}
}

func TestApplyFilters_NarrowingIsIdempotent(t *testing.T) {
	in := sampleClaims()
	filters := []Filter{
		NewFilter("date", "12m"),
		NewFilter("claim-type", "medical"),
		NewFilter("status", "Paid"),
		NewFilter("provider", "North Clinic"),
		NewFilter("patient", "jane doe"),
	}
	for _, f := range filters {
		once := ApplyFilters(in, []Filter{f}, asOf)
		twice := ApplyFilters(in, []Filter{f, f}, asOf)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("%s filter is not idempotent (-once +twice):\n%s", f.Title, diff)
		}
	}
}

func TestApplyFilters_Strategies(t *testing.T) {
	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{"status case-insensitive", []Filter{NewFilter("status", "PAID")}, []string{"C1", "C3", "C5"}},
		{"claim type", []Filter{NewFilter("claim-type", "Pharmacy")}, []string{"C2"}},
		{"provider", []Filter{NewFilter("provider", " north clinic ")}, []string{"C1", "C5"}},
		{"patient", []Filter{NewFilter("patient", "John Doe")}, []string{"C2", "C5"}},
		{"date 90d", []Filter{NewFilter("date", "90d")}, []string{"C1", "C2"}},
		{"date 12m", []Filter{NewFilter("date", "12m")}, []string{"C1", "C2", "C3", "C4"}},
		{"date 6m", []Filter{NewFilter("date", "6m")}, []string{"C1", "C2"}},
		{"date year", []Filter{NewFilter("date", "2022")}, []string{"C4"}},
		{"date range", []Filter{NewFilter("date", "2022-12-30..2023-03-05")}, []string{"C3", "C4"}},
		{"date garbage", []Filter{NewFilter("date", "last-week")}, []string{"C1", "C2", "C3", "C4", "C5"}},
		{"all is identity", []Filter{NewFilter("status", "all"), NewFilter("provider", "")}, []string{"C1", "C2", "C3", "C4", "C5"}},
		{"legacy keys", []Filter{NewFilter("statusFilter", "Paid"), NewFilter("patientDisplayFilter", "Jane Doe")}, []string{"C1", "C3"}},
		{"combined", []Filter{NewFilter("claim-type", "Medical"), NewFilter("date", "24m"), NewFilter("order-by", "amount-desc")}, []string{"C3", "C1", "C5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := numbers(ApplyFilters(sampleClaims(), tt.filters, asOf))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyFilters_OrderBy(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"date-asc", []string{"C5", "C4", "C3", "C2", "C1"}},
		{"date-desc", []string{"C1", "C2", "C3", "C4", "C5"}},
		{"provider-asc", []string{"C3", "C2", "C1", "C5", "C4"}},
		{"provider-desc", []string{"C4", "C1", "C5", "C2", "C3"}},
		{"amount-asc", []string{"C2", "C1", "C5", "C4", "C3"}},
		{"bogus", []string{"C1", "C2", "C3", "C4", "C5"}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := numbers(ApplyFilters(sampleClaims(), []Filter{NewFilter("order-by", tt.value)}, asOf))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyFilters_OrderByIsPermutation(t *testing.T) {
	in := sampleClaims()
	got := ApplyFilters(in, []Filter{NewFilter("orderByFilter", "provider-asc")}, asOf)
	if len(got) != len(in) {
		t.Fatalf("expected %d claims, got %d", len(in), len(got))
	}
	seen := map[string]bool{}
	for _, c := range got {
		seen[c.ClaimNumber] = true
	}
	for _, c := range in {
		if !seen[c.ClaimNumber] {
			t.Errorf("claim %s missing after reorder", c.ClaimNumber)
		}
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("claimProviderFilter", "North Clinic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Kind != FilterProvider || f.Kind.String() != "provider" {
		t.Errorf("expected provider filter, got %v", f.Kind)
	}

	if _, err := ParseFilter("zip", "55101"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestParseFilterParam(t *testing.T) {
	f, err := ParseFilterParam("date:2023-01-01..2023-06-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Kind != FilterDate || f.Value != "2023-01-01..2023-06-30" {
		t.Errorf("unexpected filter %+v", f)
	}

	f, err = ParseFilterParam("zip:55101")
	if err != nil || f.Known() {
		t.Errorf("expected lenient unknown filter, got %+v, %v", f, err)
	}

	for _, bad := range []string{"status", ":Paid", ""} {
		if _, err := ParseFilterParam(bad); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseFilterParam(%q): expected ErrMalformed, got %v", bad, err)
		}
	}
}

func TestDateRange(t *testing.T) {
	from, to, ok := DateRange("30d", asOf)
	if !ok || !from.Equal(day(2023, time.September, 16)) || to.Before(asOf) {
		t.Errorf("unexpected 30d range %s..%s ok=%v", from, to, ok)
	}
	for _, bad := range []string{"0d", "-3m", "3w", "99", "2023-06-30..2023-01-01", "d"} {
		if _, _, ok := DateRange(bad, asOf); ok {
			t.Errorf("DateRange(%q): expected not ok", bad)
		}
	}
	if _, _, ok := DateRange("100d", asOf); !ok {
		t.Error("expected 100d to be accepted")
	}
}

func TestBuildFilterOptions(t *testing.T) {
	opts := BuildFilterOptions(sampleClaims())

	if diff := cmp.Diff([]string{"Dental", "Medical", "Pharmacy"}, opts.ClaimTypes); diff != "" {
		t.Errorf("claim types (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Denied", "Paid", "Pending"}, opts.Statuses); diff != "" {
		t.Errorf("statuses (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Jane Doe", "John Doe"}, opts.Patients); diff != "" {
		t.Errorf("patients (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2023, 2022, 2021}, opts.Years); diff != "" {
		t.Errorf("years (-want +got):\n%s", diff)
	}
	if opts.OrderBy[0] != "date-desc" {
		t.Errorf("expected date-desc as default ordering, got %s", opts.OrderBy[0])
	}

	empty := BuildFilterOptions(nil)
	if empty.ClaimTypes == nil || empty.Years == nil {
		t.Error("expected non-nil option lists for empty input")
	}
}
