package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRefreshMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newRefreshMetrics(registry, Config{ServiceName: "geopulse", Environment: "test"})

	m.IncCycle("success")
	m.IncCycle("success")
	m.IncCycle("source_failure")
	m.SetCountryCount(250)
	m.ObserveCycleDuration(2 * time.Second)
	m.ObserveSourceFetch("restcountries", 500*time.Millisecond)

	if got := testutil.ToFloat64(m.cycles.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 successful cycles, got %v", got)
	}
	if got := testutil.ToFloat64(m.cycles.WithLabelValues("source_failure")); got != 1 {
		t.Fatalf("expected 1 source failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.countryCount); got != 250 {
		t.Fatalf("expected country count 250, got %v", got)
	}
}

func TestRefreshMetricsNilReceiver(t *testing.T) {
	var m *RefreshMetrics
	m.IncCycle("success")
	m.ObserveCycleDuration(time.Second)
	m.ObserveSourceFetch("rates", time.Second)
	m.SetCountryCount(1)
}
