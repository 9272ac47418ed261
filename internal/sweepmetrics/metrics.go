// Package sweepmetrics exports the sweep orchestrator's throughput
// and queue instrumentation as Prometheus collectors.
package sweepmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments one sweep.
type Metrics struct {
	CandidatesTotal   prometheus.Counter
	CandidatesFailed  prometheus.Counter
	CandidatesPassed  prometheus.Counter
	QueueDepth        prometheus.Gauge
	WorkersBusy       prometheus.Gauge
	EvaluationSeconds prometheus.Histogram
}

// New registers a fresh metric set on reg (use
// prometheus.NewRegistry() per sweep so repeated sweeps in one
// process never collide).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CandidatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trendlab", Subsystem: "sweep",
			Name: "candidates_total", Help: "Candidates pulled off the work queue.",
		}),
		CandidatesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trendlab", Subsystem: "sweep",
			Name: "candidates_failed_total", Help: "Candidates that errored instead of completing the ladder.",
		}),
		CandidatesPassed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trendlab", Subsystem: "sweep",
			Name: "candidates_passed_total", Help: "Candidates promoted through every ladder level.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trendlab", Subsystem: "sweep",
			Name: "queue_depth", Help: "Work items waiting in the bounded queue.",
		}),
		WorkersBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trendlab", Subsystem: "sweep",
			Name: "workers_busy", Help: "Workers currently evaluating a candidate.",
		}),
		EvaluationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trendlab", Subsystem: "sweep",
			Name: "evaluation_seconds", Help: "Wall time per candidate ladder evaluation.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}
	reg.MustRegister(m.CandidatesTotal, m.CandidatesFailed, m.CandidatesPassed,
		m.QueueDepth, m.WorkersBusy, m.EvaluationSeconds)
	return m
}
