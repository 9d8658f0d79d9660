// Package metrics exposes Prometheus instrumentation for detection runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "dedup"

// Metrics holds the run collectors and the registry they live in.
// Each instance owns its registry so several can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	// PairsScored counts pair scores produced, by scorer
	PairsScored *prometheus.CounterVec

	// StageDuration observes stage wall time in seconds, by stage
	StageDuration *prometheus.HistogramVec

	// CandidatesTotal counts combined candidates above threshold
	CandidatesTotal prometheus.Counter

	// MismatchesTotal counts listings flagged as slug mismatches
	MismatchesTotal prometheus.Counter

	// EmbeddingRequests counts embedding provider calls, by outcome
	EmbeddingRequests *prometheus.CounterVec

	// HTTPRequests counts review API requests, by route and status code
	HTTPRequests *prometheus.CounterVec
}

// New creates a Metrics instance with Go and process collectors registered
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PairsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pairs_scored_total",
			Help:      "Total number of listing pairs scored by scorer",
		}, []string{"scorer"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"stage"}),
		CandidatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "candidates_total",
			Help:      "Total number of duplicate candidates emitted",
		}),
		MismatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "mismatches_total",
			Help:      "Total number of listings whose URL slug disagrees with the name",
		}),
		EmbeddingRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests by outcome",
		}, []string{"outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of review API requests by route and status",
		}, []string{"route", "code"}),
	}
}

// PairsScoredBy records n pair scores produced by a scorer
func (m *Metrics) PairsScoredBy(scorer string, n int) {
	m.PairsScored.WithLabelValues(scorer).Add(float64(n))
}

// StageDone records the duration of a pipeline stage
func (m *Metrics) StageDone(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// EmbeddingOutcome records one embedding request outcome
func (m *Metrics) EmbeddingOutcome(outcome string) {
	m.EmbeddingRequests.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Recorder adapts Metrics to the pipeline's recorder interface
func (m *Metrics) Recorder() *Recorder {
	return &Recorder{m: m}
}

// Recorder forwards pipeline events to Metrics
type Recorder struct {
	m *Metrics
}

func (r *Recorder) PairsScored(scorer string, n int) { r.m.PairsScoredBy(scorer, n) }

func (r *Recorder) StageDuration(stage string, d time.Duration) { r.m.StageDone(stage, d) }

func (r *Recorder) Candidates(n int) { r.m.CandidatesTotal.Add(float64(n)) }

func (r *Recorder) Mismatches(n int) { r.m.MismatchesTotal.Add(float64(n)) }
