// Package metrics defines the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's collectors.
type Metrics struct {
	FeaturesTotal *prometheus.CounterVec
	ExportsTotal  *prometheus.CounterVec
	OpDuration    *prometheus.HistogramVec
	OpErrors      *prometheus.CounterVec
}

// New creates the collectors and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FeaturesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_features_applied_total",
				Help: "Total number of features applied, by feature kind",
			},
			[]string{"kind"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_exports_total",
				Help: "Total number of interchange exports, by schema",
			},
			[]string{"schema"},
		),
		OpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "facet_operation_duration_seconds",
				Help: "Duration of engine operations",
			},
			[]string{"op"},
		),
		OpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_operation_errors_total",
				Help: "Total number of failed engine operations, by operation",
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.FeaturesTotal, m.ExportsTotal, m.OpDuration, m.OpErrors)
	return m
}

// NewNop returns metrics backed by a private registry. Used when the caller
// provides no registerer, and by tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
