// Package metrics exposes conductor counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "conductor"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder owns the conductor collectors and the registry they live in.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	operations  *prometheus.CounterVec
	signals     *prometheus.CounterVec
}

// New creates a Recorder backed by a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_validations_total",
			Help:      "Connection validations by destination type and result kind.",
		}, []string{"type", "kind"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_operations_total",
			Help:      "Deployment operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_sent_total",
			Help:      "Signals forwarded to running pipelines by type and outcome.",
		}, []string{"type", "outcome"}),
	}
	r.registry.MustRegister(
		r.validations,
		r.operations,
		r.signals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry on /metrics.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveValidation counts one validation result. kind is empty for success.
func (r *Recorder) ObserveValidation(connType, kind string) {
	if r == nil {
		return
	}
	if kind == "" {
		kind = "valid"
	}
	r.validations.WithLabelValues(connType, kind).Inc()
}

// ObserveOperation counts one deploy, undeploy, start or stop.
func (r *Recorder) ObserveOperation(operation string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveSignal counts one forwarded signal.
func (r *Recorder) ObserveSignal(signalType string, err error) {
	if r == nil {
		return
	}
	r.signals.WithLabelValues(signalType, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
