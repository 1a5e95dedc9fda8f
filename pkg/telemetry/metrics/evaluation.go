package metrics

import (
	"time"

	"mercator-hq/themis/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks metrics related to event evaluation.
//
// Metrics:
//   - themis_evaluations_total: Total evaluations by result
//   - themis_evaluation_duration_seconds: Evaluation duration
//   - themis_decisions_total: Decisions produced, by matching rule
type EvaluationMetrics struct {
	// Total evaluations by result (match, no_match, error)
	evaluationsTotal *prometheus.CounterVec

	// Evaluation duration histogram
	evaluationDuration prometheus.Histogram

	// Decisions produced per rule
	decisionsTotal *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluations_total",
				Help:      "Total number of event evaluations",
			},
			[]string{"result"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of event evaluation in seconds",
				Buckets:   cfg.EvaluationDurationBuckets,
			},
		),

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "decisions_total",
				Help:      "Total number of decisions produced, by matching rule",
			},
			[]string{"rule_id"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.decisionsTotal,
	)

	return em
}

// RecordEvaluation records a single evaluation.
//
// Parameters:
//   - result: evaluation result ("match", "no_match", "error")
//   - duration: time taken to evaluate the event
//
// Example:
//
//	em.RecordEvaluation(metrics.ResultMatch, 150*time.Microsecond)
func (em *EvaluationMetrics) RecordEvaluation(result string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(result).Inc()
	em.evaluationDuration.Observe(duration.Seconds())
}

// RecordDecision records a decision produced by the given rule.
func (em *EvaluationMetrics) RecordDecision(ruleID string) {
	em.decisionsTotal.WithLabelValues(ruleID).Inc()
}
