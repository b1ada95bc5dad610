// Package metrics holds the Prometheus collectors for lookups, rankings and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricLookupsTotal        = "meetpoint_external_lookups_total"
	MetricLookupDuration      = "meetpoint_external_lookup_duration_seconds"
	MetricCandidatesAssembled = "meetpoint_candidates_assembled"
	MetricRankingsTotal       = "meetpoint_rankings_total"
	MetricHTTPRequestsTotal   = "http_requests_total"
	MetricHTTPRequestDuration = "http_request_duration_seconds"
)

// Lookup outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeUnreachable = "unreachable"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
)

// Ranking outcomes.
const (
	RankingFiltered = "filtered"
	RankingFallback = "fallback"
	RankingEmpty    = "empty"
)

// Metrics contains the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	candidates     prometheus.Histogram
	rankings       *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates unregistered collectors; call Register to expose them.
func New() *Metrics {
	return &Metrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricLookupsTotal,
				Help: "External map lookups by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricLookupDuration,
				Help:    "External map lookup latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"op"},
		),
		candidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCandidatesAssembled,
				Help:    "Size of the deduplicated candidate pool per request",
				Buckets: []float64{0, 5, 10, 15, 20, 30, 50},
			},
		),
		rankings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingsTotal,
				Help: "Rankings by fairness policy and outcome",
			},
			[]string{"policy", "outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.lookups,
		m.lookupDuration,
		m.candidates,
		m.rankings,
		m.httpRequests,
		m.httpDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveLookup(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(op, outcome).Inc()
	m.lookupDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) ObserveCandidates(n int) {
	if m == nil {
		return
	}
	m.candidates.Observe(float64(n))
}

func (m *Metrics) ObserveRanking(policy, outcome string) {
	if m == nil {
		return
	}
	m.rankings.WithLabelValues(policy, outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
