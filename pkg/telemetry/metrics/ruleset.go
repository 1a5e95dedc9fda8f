package metrics

import (
	"sync"

	"mercator-hq/themis/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RulesetMetrics tracks the ruleset lifecycle.
//
// Metrics:
//   - themis_ruleset_loads_total: Load attempts by status
//   - themis_ruleset_rules: Number of rules in the active ruleset
//   - themis_ruleset_info: Active ruleset identity (sha, version labels)
type RulesetMetrics struct {
	// Load attempts by status (success, failure)
	loadsTotal *prometheus.CounterVec

	// Rules in the active ruleset
	rules prometheus.Gauge

	// Identity of the active ruleset; constant 1 with sha/version labels
	info *prometheus.GaugeVec

	// mu serializes info series replacement on reload
	mu sync.Mutex
}

// NewRulesetMetrics creates and registers ruleset metrics with the provided
// registry.
func NewRulesetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RulesetMetrics {
	rm := &RulesetMetrics{
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ruleset_loads_total",
				Help:      "Total number of ruleset load attempts",
			},
			[]string{"status"},
		),

		rules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "ruleset_rules",
				Help:      "Number of rules in the active ruleset",
			},
		),

		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "ruleset_info",
				Help:      "Identity of the active ruleset (constant 1, labeled by sha and version)",
			},
			[]string{"sha", "version"},
		),
	}

	registry.MustRegister(
		rm.loadsTotal,
		rm.rules,
		rm.info,
	)

	return rm
}

// RecordLoad records a ruleset load attempt.
//
// Parameters:
//   - status: load outcome ("success", "failure")
func (rm *RulesetMetrics) RecordLoad(status string) {
	rm.loadsTotal.WithLabelValues(status).Inc()
}

// SetActive updates the active-ruleset gauges. The previous info series is
// dropped so a scrape never shows two rulesets as active.
func (rm *RulesetMetrics) SetActive(sha, version string, ruleCount int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.rules.Set(float64(ruleCount))
	rm.info.Reset()
	rm.info.WithLabelValues(sha, version).Set(1)
}
