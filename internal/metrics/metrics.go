// Package metrics records per-run counters on a private Prometheus registry.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "takeoff"

// Recorder holds the collectors for one or more simulation runs.
type Recorder struct {
	registry *prometheus.Registry

	trials    prometheus.Counter
	never     *prometheus.CounterVec
	excluded  *prometheus.CounterVec
	clamped   *prometheus.CounterVec
	duration  prometheus.Histogram
	emptyPair *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		trials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Total number of sampled trials",
		}),
		never: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestone_never_total",
			Help:      "Trials in which a milestone never occurred",
		}, []string{"milestone"}),
		excluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pair_excluded_total",
			Help:      "Trials excluded from a pair because its start or end never occurred",
		}, []string{"pair"}),
		clamped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pair_clamped_total",
			Help:      "Trials whose end preceded the start and were clamped to zero",
		}, []string{"pair"}),
		emptyPair: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pair_no_samples_total",
			Help:      "Runs in which a pair had no valid trials",
		}, []string{"pair"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a simulation run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
	r.registry.MustRegister(r.trials, r.never, r.excluded, r.clamped, r.emptyPair, r.duration)
	return r
}

// Registry exposes the underlying registry, e.g. for gathering in tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// AddTrials counts n completed trials.
func (r *Recorder) AddTrials(n int) {
	if r == nil {
		return
	}
	r.trials.Add(float64(n))
}

// AddNever counts n trials in which milestone never occurred.
func (r *Recorder) AddNever(milestone string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.never.WithLabelValues(milestone).Add(float64(n))
}

// AddExcluded counts n trials dropped from pair.
func (r *Recorder) AddExcluded(pair string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.excluded.WithLabelValues(pair).Add(float64(n))
}

// AddClamped counts n trials of pair whose negative delta was clamped.
func (r *Recorder) AddClamped(pair string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.clamped.WithLabelValues(pair).Add(float64(n))
}

// MarkNoSamples records that pair ended a run without any valid trial.
func (r *Recorder) MarkNoSamples(pair string) {
	if r == nil {
		return
	}
	r.emptyPair.WithLabelValues(pair).Inc()
}

// ObserveRun records the wall-clock time of a run.
func (r *Recorder) ObserveRun(d time.Duration) {
	if r == nil {
		return
	}
	r.duration.Observe(d.Seconds())
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable
// for the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return fmt.Errorf("write metrics: no recorder")
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
