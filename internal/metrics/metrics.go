// Package metrics collects per-run Prometheus metrics and exports them for
// node-exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lucasnoah/covergate/internal/chain"
)

const namespace = "covergate"

// Recorder holds the metrics of one run in its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	stepDuration *prometheus.HistogramVec
	steps        *prometheus.CounterVec
	assemblies   *prometheus.GaugeVec
	runs         *prometheus.CounterVec
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of each external process step.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"step"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "External process steps run, by outcome.",
		}, []string{"step", "outcome"}),
		assemblies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assemblies",
			Help:      "Assemblies classified in the last run, by kind.",
		}, []string{"kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Stage runs, by stage and outcome.",
		}, []string{"stage", "outcome"}),
	}
	r.registry.MustRegister(r.stepDuration, r.steps, r.assemblies, r.runs)
	return r
}

// ObserveStep records a finished process step. It matches chain.Observer.
func (r *Recorder) ObserveStep(res chain.StepResult, err error) {
	r.stepDuration.WithLabelValues(res.Name).Observe(res.Duration.Seconds())
	r.steps.WithLabelValues(res.Name, outcome(err)).Inc()
}

// SetAssemblies records how many assemblies of kind were classified.
func (r *Recorder) SetAssemblies(kind string, n int) {
	r.assemblies.WithLabelValues(kind).Set(float64(n))
}

// ObserveRun records the terminal outcome of a stage run.
func (r *Recorder) ObserveRun(stage string, err error) {
	r.runs.WithLabelValues(stage, outcome(err)).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
