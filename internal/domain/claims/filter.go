package claims

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FilterKind identifies a registered claims filter.
type FilterKind int

const (
	FilterUnknown FilterKind = iota
	FilterDate
	FilterClaimType
	FilterStatus
	FilterOrderBy
	FilterProvider
	FilterPatient
)

var kindTitles = map[FilterKind]string{
	FilterDate:      "date",
	FilterClaimType: "claim-type",
	FilterStatus:    "status",
	FilterOrderBy:   "order-by",
	FilterProvider:  "provider",
	FilterPatient:   "patient",
}

// titleKinds accepts canonical titles and the legacy keys older front-end
// builds send.
var titleKinds = map[string]FilterKind{
	"date":                 FilterDate,
	"claim-type":           FilterClaimType,
	"status":               FilterStatus,
	"order-by":             FilterOrderBy,
	"provider":             FilterProvider,
	"patient":              FilterPatient,
	"dateFilter":           FilterDate,
	"claimTypeFilter":      FilterClaimType,
	"statusFilter":         FilterStatus,
	"orderByFilter":        FilterOrderBy,
	"claimProviderFilter":  FilterProvider,
	"patientDisplayFilter": FilterPatient,
}

func (k FilterKind) String() string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return "unknown"
}

// Filter is one (title, value) entry of a filter set.
type Filter struct {
	Kind  FilterKind
	Title string
	Value string
}

// Known reports whether the filter maps to a registered strategy.
func (f Filter) Known() bool { return f.Kind != FilterUnknown }

// NewFilter builds a filter, leaving Kind as FilterUnknown for titles that
// are not registered. ApplyFilters skips such entries.
func NewFilter(title, value string) Filter {
	title = strings.TrimSpace(title)
	return Filter{Kind: titleKinds[title], Title: title, Value: strings.TrimSpace(value)}
}

// ParseFilter is the strict form of NewFilter.
func ParseFilter(title, value string) (Filter, error) {
	f := NewFilter(title, value)
	if !f.Known() {
		return f, fmt.Errorf("%w: %q", ErrUnknownFilter, f.Title)
	}
	return f, nil
}

// ParseFilterParam parses a "title:value" query parameter.
func ParseFilterParam(s string) (Filter, error) {
	title, value, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(title) == "" {
		return Filter{}, fmt.Errorf("%w: %q, want title:value", ErrMalformed, s)
	}
	return NewFilter(title, value), nil
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

type strategy func(claims []Claim, value string, asOf time.Time) []Claim

var strategies = map[FilterKind]strategy{
	FilterDate:      dateFilter,
	FilterClaimType: fieldFilter(func(c Claim) string { return c.ClaimType }),
	FilterStatus:    fieldFilter(func(c Claim) string { return c.Status }),
	FilterOrderBy:   orderByFilter,
	FilterProvider:  fieldFilter(func(c Claim) string { return c.ProviderName }),
	FilterPatient:   fieldFilter(func(c Claim) string { return c.PatientName }),
}

// ApplyFilters folds filters over claims in order. Unknown filters are
// skipped. The input slice is never modified and the result is never nil.
// asOf anchors relative date filters such as "90d".
func ApplyFilters(claims []Claim, filters []Filter, asOf time.Time) []Claim {
	result := make([]Claim, len(claims))
	copy(result, claims)
	for _, f := range filters {
		s, ok := strategies[f.Kind]
		if !ok {
			continue
		}
		if isAll(f.Value) {
			continue
		}
		result = s(result, f.Value, asOf)
	}
	return result
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

func keep(claims []Claim, pred func(Claim) bool) []Claim {
	out := make([]Claim, 0, len(claims))
	for _, c := range claims {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func fieldFilter(field func(Claim) string) strategy {
	return func(claims []Claim, value string, _ time.Time) []Claim {
		value = strings.TrimSpace(value)
		return keep(claims, func(c Claim) bool {
			return strings.EqualFold(strings.TrimSpace(field(c)), value)
		})
	}
}

// ---------------------------------------------------------------------------
// Date filter
// ---------------------------------------------------------------------------

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange returns the inclusive [from, to] calendar range a date filter
// value selects. ok is false for values the date filter ignores.
func DateRange(value string, asOf time.Time) (from, to time.Time, ok bool) {
	value = strings.TrimSpace(value)
	today := dateOnly(asOf)
	far := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

	if a, b, found := strings.Cut(value, ".."); found {
		start, err1 := time.Parse(time.DateOnly, strings.TrimSpace(a))
		end, err2 := time.Parse(time.DateOnly, strings.TrimSpace(b))
		if err1 != nil || err2 != nil || end.Before(start) {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	if y, err := strconv.Atoi(value); err == nil {
		if len(value) != 4 || y < 1900 {
			return time.Time{}, time.Time{}, false
		}
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC), true
	}

	if len(value) < 2 {
		return time.Time{}, time.Time{}, false
	}
	n, err := strconv.Atoi(value[:len(value)-1])
	if err != nil || n <= 0 {
		return time.Time{}, time.Time{}, false
	}
	switch value[len(value)-1] {
	case 'd':
		return today.AddDate(0, 0, -n), far, true
	case 'm':
		return today.AddDate(0, -n, 0), far, true
	}
	return time.Time{}, time.Time{}, false
}

func dateFilter(claims []Claim, value string, asOf time.Time) []Claim {
	from, to, ok := DateRange(value, asOf)
	if !ok {
		return claims
	}
	return keep(claims, func(c Claim) bool {
		d := dateOnly(c.ServiceDate)
		return !d.Before(from) && !d.After(to)
	})
}

// ---------------------------------------------------------------------------
// Order-by filter
// ---------------------------------------------------------------------------

var orderings = map[string]func(a, b Claim) bool{
	"date-desc":     func(a, b Claim) bool { return a.ServiceDate.After(b.ServiceDate) },
	"date-asc":      func(a, b Claim) bool { return a.ServiceDate.Before(b.ServiceDate) },
	"provider-asc":  func(a, b Claim) bool { return strings.ToLower(a.ProviderName) < strings.ToLower(b.ProviderName) },
	"provider-desc": func(a, b Claim) bool { return strings.ToLower(a.ProviderName) > strings.ToLower(b.ProviderName) },
	"amount-desc":   func(a, b Claim) bool { return a.MemberResponsibility > b.MemberResponsibility },
	"amount-asc":    func(a, b Claim) bool { return a.MemberResponsibility < b.MemberResponsibility },
}

// OrderByValues lists the accepted order-by values, default first.
var OrderByValues = []string{"date-desc", "date-asc", "provider-asc", "provider-desc", "amount-desc", "amount-asc"}

func orderByFilter(claims []Claim, value string, _ time.Time) []Claim {
	less, ok := orderings[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return claims
	}
	out := make([]Claim, len(claims))
	copy(out, claims)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// DateRangeValues lists the relative date filter values offered in the UI.
var DateRangeValues = []string{"30d", "90d", "6m", "12m", "24m"}

// FilterOptions holds the values offered in each filter drop-down.
type FilterOptions struct {
	ClaimTypes []string `json:"claim_types"`
	Statuses   []string `json:"statuses"`
	Providers  []string `json:"providers"`
	Patients   []string `json:"patients"`
	Years      []int    `json:"years"`
	DateRanges []string `json:"date_ranges"`
	OrderBy    []string `json:"order_by"`
}

// BuildFilterOptions collects the distinct, sorted field values in claims.
// Years are newest first.
func BuildFilterOptions(claims []Claim) *FilterOptions {
	opts := &FilterOptions{
		ClaimTypes: distinct(claims, func(c Claim) string { return c.ClaimType }),
		Statuses:   distinct(claims, func(c Claim) string { return c.Status }),
		Providers:  distinct(claims, func(c Claim) string { return c.ProviderName }),
		Patients:   distinct(claims, func(c Claim) string { return c.PatientName }),
		Years:      []int{},
		DateRanges: append([]string(nil), DateRangeValues...),
		OrderBy:    append([]string(nil), OrderByValues...),
	}
	seen := make(map[int]bool)
	for _, c := range claims {
		if c.ServiceDate.IsZero() {
			continue
		}
		if y := c.ServiceDate.Year(); !seen[y] {
			seen[y] = true
			opts.Years = append(opts.Years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(opts.Years)))
	return opts
}

func distinct(claims []Claim, field func(Claim) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, c := range claims {
		v := strings.TrimSpace(field(c))
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
