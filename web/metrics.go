package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are registered on a per-server registry so several servers (and
// tests) can coexist in one process.
type metrics struct {
	registry       *prometheus.Registry
	searches       *prometheus.CounterVec
	searchLatency  prometheus.Histogram
	indexRuns      *prometheus.CounterVec
	indexedRecords prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsearch_searches_total",
			Help: "Search requests by outcome.",
		}, []string{"status"}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fsearch_search_duration_seconds",
			Help:    "Time spent answering search requests.",
			Buckets: prometheus.DefBuckets,
		}),
		indexRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsearch_index_runs_total",
			Help: "Indexing runs by outcome.",
		}, []string{"status"}),
		indexedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fsearch_indexed_records_total",
			Help: "Records written by indexing runs.",
		}),
	}
	m.registry.MustRegister(m.searches, m.searchLatency, m.indexRuns, m.indexedRecords)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
