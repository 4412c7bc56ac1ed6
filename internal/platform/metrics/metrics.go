package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the plan information service.
type Metrics struct {
	gatherer prometheus.Gatherer

	RequestDuration  *prometheus.HistogramVec
	ActiveRequests   prometheus.Gauge
	DocumentsServed  *prometheus.CounterVec
	BookletLookups   *prometheus.CounterVec
	UpstreamFailures *prometheus.CounterVec
	FiltersApplied   *prometheus.CounterVec
	UnknownFilters   prometheus.Counter
	BannerRuleErrors prometheus.Counter
}

// New creates the metrics and registers them with reg. Pass
// prometheus.NewRegistry() in tests to keep registrations isolated.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planinfo_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ActiveRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "planinfo_http_active_requests",
			Help: "Requests currently being served",
		}),
		DocumentsServed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "planinfo_documents_served_total",
			Help: "Benefit documents and EOBs served to members, by kind and delivery (inline or redirect)",
		}, []string{"kind", "delivery"}),
		BookletLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "planinfo_booklet_cache_lookups_total",
			Help: "Booklet cache lookups by result (hit or miss)",
		}, []string{"result"}),
		UpstreamFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "planinfo_upstream_failures_total",
			Help: "Failed calls to upstream document services",
		}, []string{"service"}),
		FiltersApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "planinfo_claims_filters_applied_total",
			Help: "Claims filters applied by filter title",
		}, []string{"filter"}),
		UnknownFilters: f.NewCounter(prometheus.CounterOpts{
			Name: "planinfo_claims_unknown_filters_total",
			Help: "Claims filters skipped because their title is not registered",
		}),
		BannerRuleErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "planinfo_banner_rule_errors_total",
			Help: "Banner audience rules that failed to evaluate",
		}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}

// Middleware records request latency keyed by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.ActiveRequests.Inc()
			defer m.ActiveRequests.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// IncDocumentServed counts one document delivered to a member.
func (m *Metrics) IncDocumentServed(kind, delivery string) {
	if m == nil {
		return
	}
	m.DocumentsServed.WithLabelValues(kind, delivery).Inc()
}

// IncBookletLookup counts a booklet cache hit or miss.
func (m *Metrics) IncBookletLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.BookletLookups.WithLabelValues(result).Inc()
}

// IncUpstreamFailure counts a failed call to service.
func (m *Metrics) IncUpstreamFailure(service string) {
	if m == nil {
		return
	}
	m.UpstreamFailures.WithLabelValues(service).Inc()
}

// IncFilterApplied counts a claims filter by title; unknown titles go to a
// single counter to keep label cardinality bounded.
func (m *Metrics) IncFilterApplied(title string, known bool) {
	if m == nil {
		return
	}
	if !known {
		m.UnknownFilters.Inc()
		return
	}
	m.FiltersApplied.WithLabelValues(title).Inc()
}

// IncBannerRuleError counts a banner audience rule evaluation failure.
func (m *Metrics) IncBannerRuleError() {
	if m == nil {
		return
	}
	m.BannerRuleErrors.Inc()
}
