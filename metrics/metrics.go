package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the calculator service.
type Metrics struct {
	Calculations        *prometheus.CounterVec
	CacheHits           prometheus.Counter
	Recomputes          prometheus.Counter
	RejectedEdits       prometheus.Counter
	RateLimited         prometheus.Counter
	ActiveCalculators   prometheus.Gauge
	RecomputeLatencySec prometheus.Histogram
}

// New creates the metrics and registers them with reg. A nil reg uses a
// private registry, which keeps tests independent of each other.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loancalc_calculations_total",
			Help: "Total number of amortization computations by outcome (valid, degenerate)",
		}, []string{"outcome"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "loancalc_cache_hits_total",
			Help: "Total number of computations served from the result cache",
		}),
		Recomputes: factory.NewCounter(prometheus.CounterOpts{
			Name: "loancalc_calculator_recomputes_total",
			Help: "Total number of debounced calculator recomputations",
		}),
		RejectedEdits: factory.NewCounter(prometheus.CounterOpts{
			Name: "loancalc_display_edits_rejected_total",
			Help: "Total number of display edits ignored because they fell outside the slider range",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "loancalc_http_rate_limited_total",
			Help: "Total number of HTTP requests rejected by the rate limiter",
		}),
		ActiveCalculators: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loancalc_active_calculators",
			Help: "Current number of live calculator sessions",
		}),
		RecomputeLatencySec: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loancalc_recompute_duration_seconds",
			Help:    "Time spent computing and formatting a calculator result",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
}

func (m *Metrics) IncrementCalculations(valid bool) {
	if m == nil {
		return
	}
	outcome := "degenerate"
	if valid {
		outcome = "valid"
	}
	m.Calculations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCacheHits() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) ObserveRecompute(seconds float64) {
	if m == nil {
		return
	}
	m.Recomputes.Inc()
	m.RecomputeLatencySec.Observe(seconds)
}

func (m *Metrics) IncrementRejectedEdits() {
	if m == nil {
		return
	}
	m.RejectedEdits.Inc()
}

func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

func (m *Metrics) SetActiveCalculators(n int) {
	if m == nil {
		return
	}
	m.ActiveCalculators.Set(float64(n))
}
