package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the decision engine.
type Metrics struct {
	EvaluationsTotal   prometheus.Counter
	DecisionsTotal     *prometheus.CounterVec
	RuleTriggeredTotal *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	RegistrationsTotal *prometheus.CounterVec
	ActiveRules        prometheus.Gauge
}

// NewMetrics creates and registers all collectors on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry to
// avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvaluationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_evaluations_total",
			Help: "Total number of evaluation requests processed",
		}),
		DecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_decisions_total",
			Help: "Final decisions by action",
		}, []string{"action"}),
		RuleTriggeredTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_rule_triggered_total",
			Help: "Rule trigger counts by rule id",
		}, []string{"rule_id"}),
		EvaluationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskgate_evaluation_duration_seconds",
			Help:    "End-to-end evaluation latency",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		RegistrationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_rule_registrations_total",
			Help: "Rule registration attempts by outcome",
		}, []string{"outcome"}),
		ActiveRules: factory.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_active_rules",
			Help: "Number of registered custom rules across tenants",
		}),
	}
}
