// Package metrics defines the Prometheus collectors for index builds and
// query serving and exposes them over HTTP.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query outcome labels.
const (
	ResultHit     = "hit"
	ResultNoMatch = "no_match"
)

// Metrics holds all collectors. A nil *Metrics records nothing.
type Metrics struct {
	DocsIndexedTotal prometheus.Counter
	BuildDuration    prometheus.Histogram
	QueriesTotal     *prometheus.CounterVec
	QueryDuration    prometheus.Histogram
	QueryCandidates  prometheus.Histogram
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tfidx_docs_indexed_total",
			Help: "Total documents added to an index.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tfidx_build_duration_seconds",
			Help:    "Index build duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tfidx_queries_total",
			Help: "Total queries by result type (hit, no_match).",
		}, []string{"result"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tfidx_query_duration_seconds",
			Help:    "Query latency in seconds.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		QueryCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tfidx_query_candidates",
			Help:    "Number of candidate documents per query.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 1000, 10000},
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tfidx_query_cache_hits_total",
			Help: "Total query cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tfidx_query_cache_misses_total",
			Help: "Total query cache misses.",
		}),
	}

	reg.MustRegister(
		m.DocsIndexedTotal,
		m.BuildDuration,
		m.QueriesTotal,
		m.QueryDuration,
		m.QueryCandidates,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)
	return m
}

// ObserveBuild records a finished build.
func (m *Metrics) ObserveBuild(docs int, d time.Duration) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Add(float64(docs))
	m.BuildDuration.Observe(d.Seconds())
}

// ObserveQuery records one answered query.
func (m *Metrics) ObserveQuery(candidates int, d time.Duration) {
	if m == nil {
		return
	}
	result := ResultHit
	if candidates == 0 {
		result = ResultNoMatch
	}
	m.QueriesTotal.WithLabelValues(result).Inc()
	m.QueryDuration.Observe(d.Seconds())
	m.QueryCandidates.Observe(float64(candidates))
}

// CacheHit records a query cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss records a query cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// Handler returns the scrape handler for the collectors in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in the background. It returns the server so
// the caller can shut it down.
func Serve(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}
