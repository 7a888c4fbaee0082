// Package metrics exposes Prometheus collectors for extension compilation and
// invocation. A nil *Metrics records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one registry instance.
type Metrics struct {
	compileFailures prometheus.Counter
	invocations     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	reloads         prometheus.Counter
	registered      *prometheus.GaugeVec
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		compileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphproc_compile_failures_total",
			Help: "Extension classes that failed to compile",
		}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphproc_invocations_total",
			Help: "Procedure, function and aggregation calls by outcome",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphproc_invocation_duration_seconds",
			Help:    "Time spent invoking extension code",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphproc_reloads_total",
			Help: "Registry reloads",
		}),
		registered: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "graphproc_registered",
			Help: "Registered entry points by kind",
		}, []string{"kind"}),
	}
}

// Register adds every collector to r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	if m == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{m.compileFailures, m.invocations, m.duration, m.reloads, m.registered} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// CompileFailed counts a class that failed to compile.
func (m *Metrics) CompileFailed() {
	if m == nil {
		return
	}
	m.compileFailures.Inc()
}

// ObserveInvocation records one call of the given kind started at start.
func (m *Metrics) ObserveInvocation(kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.invocations.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Reloaded counts a registry swap.
func (m *Metrics) Reloaded() {
	if m == nil {
		return
	}
	m.reloads.Inc()
}

// SetRegistered records how many entry points of kind are registered.
func (m *Metrics) SetRegistered(kind string, n int) {
	if m == nil {
		return
	}
	m.registered.WithLabelValues(kind).Set(float64(n))
}
