// Package metrics records agent activity as Prometheus series.
package metrics

import (
	"net/http"
	"time"

	"research-agent/internal/application/port/output"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "research_agent"

var _ output.MetricsPort = (*Recorder)(nil)

type Recorder struct {
	registry       *prometheus.Registry
	evaluations    *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	searchResults  prometheus.Histogram
	iterations     prometheus.Histogram
}

// New creates a recorder with its own registry, so several recorders can
// coexist in one process.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Critic evaluations by outcome (ok or the failure kind).",
		}, []string{"outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Paper search latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Papers returned per successful search.",
			Buckets:   []float64{0, 1, 2, 5, 10},
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistant_iterations",
			Help:      "Model turns per research assistant run.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		}),
	}

	r.registry.MustRegister(
		r.evaluations,
		r.searchDuration,
		r.searchResults,
		r.iterations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveEvaluation(outcome string) {
	r.evaluations.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveSearch(start time.Time, results int, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	r.searchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if !failed {
		r.searchResults.Observe(float64(results))
	}
}

func (r *Recorder) ObserveAssistantRun(iterations int) {
	r.iterations.Observe(float64(iterations))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
