// Package metrics owns the process Prometheus registry and the engine's collectors
package metrics

import (
	"net/http"
	"time"

	"policyxray/internal/core/classify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "policyxray"

// Analysis paths
const (
	PathRegex = "regex"
	PathModel = "model"
)

// Metrics is a private registry plus the collectors the engine writes to
type Metrics struct {
	reg *prometheus.Registry

	analyses      *prometheus.CounterVec
	chunkOutcomes *prometheus.CounterVec
	chunksDropped prometheus.Counter
	modelLatency  *prometheus.HistogramVec
	enhanceCalls  *prometheus.CounterVec
	overallScore  prometheus.Histogram
}

// New builds and registers every collector, including the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Documents analyzed, by path.",
		}, []string{"path"}),
		chunkOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_outcomes_total",
			Help:      "Model path chunk calls, by outcome.",
		}, []string{"outcome"}),
		chunksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_dropped_total",
			Help:      "Chunks discarded by the per-document cap.",
		}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_seconds",
			Help:      "Latency of one model call, by outcome.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		enhanceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhance_matches_total",
			Help:      "Regex matches sent through enhancement, by result.",
		}, []string{"result"}),
		overallScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Distribution of overall regex path scores.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
	m.reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}),
		m.analyses, m.chunkOutcomes, m.chunksDropped, m.modelLatency, m.enhanceCalls, m.overallScore,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Analysis counts one document on path
func (m *Metrics) Analysis(path string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(path).Inc()
}

// OverallScore records a regex path overall score
func (m *Metrics) OverallScore(score float64) {
	if m == nil {
		return
	}
	m.overallScore.Observe(score)
}

// Enhanced records one enhancement pass's counts
func (m *Metrics) Enhanced(validated, cited, failed int) {
	if m == nil {
		return
	}
	m.enhanceCalls.WithLabelValues("validated").Add(float64(validated))
	m.enhanceCalls.WithLabelValues("cited").Add(float64(cited))
	m.enhanceCalls.WithLabelValues("failed").Add(float64(failed))
}

// ChunkDone implements classify.Observer
func (m *Metrics) ChunkDone(outcome classify.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.chunkOutcomes.WithLabelValues(string(outcome)).Inc()
	m.modelLatency.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// ChunksDropped implements classify.Observer
func (m *Metrics) ChunksDropped(n int) {
	if m == nil {
		return
	}
	m.chunksDropped.Add(float64(n))
}

var _ classify.Observer = (*Metrics)(nil)
