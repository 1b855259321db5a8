package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	trialsTotal         *prometheus.CounterVec
	trialsMissing       *prometheus.CounterVec
	trialRetries        prometheus.Counter
	configurationsTotal *prometheus.CounterVec
	simulationDuration  prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		trialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_trials_total",
				Help: "Total number of simulation trials executed",
			},
			[]string{"policy", "method"},
		),

		trialsMissing: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_trials_missing_total",
				Help: "Trials whose outcome was missing and excluded from aggregation",
			},
			[]string{"policy", "method"},
		),

		trialRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prism_trial_retries_total",
				Help: "Trial retries caused by insufficient return history",
			},
		),

		configurationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_configurations_total",
				Help: "Completed simulation configurations by status",
			},
			[]string{"status"},
		),

		simulationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prism_simulation_duration_seconds",
				Help:    "Wall time of one simulation configuration",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
	}

	reg.MustRegister(r.trialsTotal)
	reg.MustRegister(r.trialsMissing)
	reg.MustRegister(r.trialRetries)
	reg.MustRegister(r.configurationsTotal)
	reg.MustRegister(r.simulationDuration)

	return r
}

// The recorder methods are nil-safe so the engine can run without metrics.

// RecordTrial counts one finished trial.
func (r *Registry) RecordTrial(policy, method string) {
	if r == nil {
		return
	}
	r.trialsTotal.WithLabelValues(policy, method).Inc()
}

// RecordMissing counts a trial excluded from numeric aggregation.
func (r *Registry) RecordMissing(policy, method string) {
	if r == nil {
		return
	}
	r.trialsMissing.WithLabelValues(policy, method).Inc()
}

// RecordRetry counts a trial retry.
func (r *Registry) RecordRetry() {
	if r == nil {
		return
	}
	r.trialRetries.Inc()
}

// RecordConfiguration counts a completed configuration ("ok" or "failed").
func (r *Registry) RecordConfiguration(status string) {
	if r == nil {
		return
	}
	r.configurationsTotal.WithLabelValues(status).Inc()
}

// ObserveSimulationDuration records the wall time of one configuration.
func (r *Registry) ObserveSimulationDuration(seconds float64) {
	if r == nil {
		return
	}
	r.simulationDuration.Observe(seconds)
}
