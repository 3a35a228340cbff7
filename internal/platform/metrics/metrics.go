// Package metrics exposes Prometheus collectors for the audit service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors recorded by the audit service.
type Metrics struct {
	registry *prometheus.Registry

	AuditsTotal     *prometheus.CounterVec
	GateDecisions   *prometheus.CounterVec
	AuditDuration   prometheus.Histogram
	DimensionScores *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AuditsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siteaudit",
			Name:      "audits_total",
			Help:      "Audits by outcome.",
		}, []string{"outcome"}),
		GateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siteaudit",
			Name:      "gate_decisions_total",
			Help:      "Admission gate decisions by result.",
		}, []string{"result"}),
		AuditDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "siteaudit",
			Name:      "audit_duration_seconds",
			Help:      "Wall-clock time of successful audits including the page fetch.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 10, 30},
		}),
		DimensionScores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "siteaudit",
			Name:      "dimension_score",
			Help:      "Distribution of scores per dimension.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"dimension"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
