package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Register(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()

	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	m.ObserveLookup("travel_time", OutcomeOK, 120*time.Millisecond)
	m.ObserveCandidates(7)
	m.ObserveRanking("balanced", RankingFiltered)
	m.ObserveHTTP("POST", "/v1/meeting-places", 200, 300*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}

	expectedNames := map[string]bool{
		MetricLookupsTotal:        false,
		MetricLookupDuration:      false,
		MetricCandidatesAssembled: false,
		MetricRankingsTotal:       false,
		MetricHTTPRequestsTotal:   false,
		MetricHTTPRequestDuration: false,
	}
	for _, family := range families {
		if _, ok := expectedNames[family.GetName()]; ok {
			expectedNames[family.GetName()] = true
		}
	}
	for name, found := range expectedNames {
		if !found {
			t.Errorf("metric %s not found in gathered metrics", name)
		}
	}

	if err := m.Register(reg); err == nil {
		t.Errorf("expected error on duplicate registration")
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveLookup("search", OutcomeError, time.Millisecond)
	m.ObserveLookup("search", OutcomeError, time.Millisecond)
	m.ObserveRanking("strict", RankingFallback)

	if got := testutil.ToFloat64(m.lookups.WithLabelValues("search", OutcomeError)); got != 2 {
		t.Errorf("expected 2 failed searches, got %v", got)
	}
	if got := testutil.ToFloat64(m.rankings.WithLabelValues("strict", RankingFallback)); got != 1 {
		t.Errorf("expected 1 fallback ranking, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLookup("search", OutcomeOK, time.Second)
	m.ObserveCandidates(1)
	m.ObserveRanking("balanced", RankingEmpty)
	m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
}
