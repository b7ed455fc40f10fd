package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RefreshMetrics tracks refresh-cycle outcomes and source fetch latency.
type RefreshMetrics struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	sourceFetch   *prometheus.HistogramVec
	countryCount  prometheus.Gauge
}

var (
	refreshMetricsOnce sync.Once
	refreshMetrics     *RefreshMetrics
)

func Refresh() *RefreshMetrics {
	return RefreshWithConfig(Config{})
}

func RefreshWithConfig(cfg Config) *RefreshMetrics {
	refreshMetricsOnce.Do(func() {
		refreshMetrics = newRefreshMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return refreshMetrics
}

func ResetRefreshMetricsForTest() {
	refreshMetricsOnce = sync.Once{}
	refreshMetrics = nil
}

func newRefreshMetrics(registerer prometheus.Registerer, cfg Config) *RefreshMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "geopulse"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	cycles := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "geopulse_refresh_cycles_total",
			Help:        "Total refresh cycles by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | source_failure | persist_failure
	)

	cycleDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "geopulse_refresh_cycle_duration_seconds",
			Help:        "Wall-clock duration of a full refresh cycle.",
			Buckets:     []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			ConstLabels: constLabels,
		},
	)

	sourceFetch := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "geopulse_source_fetch_duration_seconds",
			Help:        "Upstream fetch latency per source.",
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		},
		[]string{"source"},
	)

	countryCount := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "geopulse_refresh_country_count",
			Help:        "Number of countries processed by the last successful cycle.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(cycles, cycleDuration, sourceFetch, countryCount)

	return &RefreshMetrics{
		cycles:        cycles,
		cycleDuration: cycleDuration,
		sourceFetch:   sourceFetch,
		countryCount:  countryCount,
	}
}

func (m *RefreshMetrics) IncCycle(result string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(result).Inc()
}

func (m *RefreshMetrics) ObserveCycleDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(d.Seconds())
}

func (m *RefreshMetrics) ObserveSourceFetch(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.sourceFetch.WithLabelValues(source).Observe(d.Seconds())
}

func (m *RefreshMetrics) SetCountryCount(count int) {
	if m == nil {
		return
	}
	m.countryCount.Set(float64(count))
}
