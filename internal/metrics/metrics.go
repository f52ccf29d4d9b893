package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the candle pipeline and analysis runs.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline
	ResolveTotal   *prometheus.CounterVec   // labels: market, timeframe, outcome
	FetchDuration  *prometheus.HistogramVec // labels: adapter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	OHLCViolations *prometheus.CounterVec // labels: market

	// Analysis
	SignalsTotal      *prometheus.CounterVec // labels: market, timeframe
	AnalysisDuration  prometheus.Histogram
	IndicatorFailures prometheus.Counter
}

// NewMetrics creates the collectors on a private registry so several instances
// can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ResolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_resolve_total",
			Help: "Candle resolutions by market, timeframe and outcome (ok, empty)",
		}, []string{"market", "timeframe", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smc_fetch_duration_seconds",
			Help:    "Source adapter fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"adapter"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smc_cache_hits_total",
			Help: "Candle cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smc_cache_misses_total",
			Help: "Candle cache misses",
		}),
		OHLCViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_ohlc_violations_total",
			Help: "Candles whose high/low do not bound open and close",
		}, []string{"market"}),

		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_signals_total",
			Help: "Order-block entry signals emitted",
		}, []string{"market", "timeframe"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smc_analysis_duration_seconds",
			Help:    "End-to-end analysis latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		IndicatorFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smc_indicator_failures_total",
			Help: "Analyses whose indicator computation failed",
		}),
	}

	m.registry.MustRegister(
		m.ResolveTotal,
		m.FetchDuration,
		m.CacheHits,
		m.CacheMisses,
		m.OHLCViolations,
		m.SignalsTotal,
		m.AnalysisDuration,
		m.IndicatorFailures,
	)

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResolve records the outcome of one pipeline resolution.
func (m *Metrics) ObserveResolve(market, timeframe string, ok bool) {
	if m == nil {
		return
	}

	outcome := "empty"
	if ok {
		outcome = "ok"
	}

	m.ResolveTotal.WithLabelValues(market, timeframe, outcome).Inc()
}

// ObserveFetch records one adapter call.
func (m *Metrics) ObserveFetch(adapter string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.FetchDuration.WithLabelValues(adapter).Observe(elapsed.Seconds())
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}

	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// AddOHLCViolations records inconsistent candles seen for market.
func (m *Metrics) AddOHLCViolations(market string, count int) {
	if m == nil || count == 0 {
		return
	}

	m.OHLCViolations.WithLabelValues(market).Add(float64(count))
}

// ObserveAnalysis records one finished analysis run.
func (m *Metrics) ObserveAnalysis(market, timeframe string, signals int, indicatorFailed bool, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.SignalsTotal.WithLabelValues(market, timeframe).Add(float64(signals))
	m.AnalysisDuration.Observe(elapsed.Seconds())

	if indicatorFailed {
		m.IndicatorFailures.Inc()
	}
}
