package metrics

import (
	"sync"
	"time"

	"mercator-hq/themis/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values for evaluation metrics.
const (
	ResultMatch   = "match"
	ResultNoMatch = "no_match"
	ResultError   = "error"
)

// Status label values for ruleset load metrics.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Collector is the main orchestrator for all Prometheus metrics in Themis.
// It manages metric registration and provides a unified interface for
// recording metrics across all components.
//
// Rule IDs appear as label values, and rulesets are replaced at runtime, so
// the collector bounds label cardinality: once the limit is reached, new rule
// IDs are aggregated under "other".
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Evaluation metrics
	evaluationMetrics *EvaluationMetrics

	// Ruleset lifecycle metrics
	rulesetMetrics *RulesetMetrics

	// Cardinality tracking for rule_id labels
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh private
// registry is created, keeping Themis metrics separate from anything else
// registered in the process.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "themis",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "themis"
	}
	if len(cfg.EvaluationDurationBuckets) == 0 {
		// Evaluations are in-memory linear scans: 1µs to ~16ms
		cfg.EvaluationDurationBuckets = prometheus.ExponentialBuckets(0.000001, 2, 15)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.evaluationMetrics = NewEvaluationMetrics(cfg, registry)
	c.rulesetMetrics = NewRulesetMetrics(cfg, registry)

	return c
}

// RecordEvaluation records metrics for a completed evaluation.
//
// Parameters:
//   - result: evaluation result (ResultMatch, ResultNoMatch, ResultError)
//   - duration: time spent in the engine
//
// Example:
//
//	collector.RecordEvaluation(metrics.ResultMatch, 80*time.Microsecond)
func (c *Collector) RecordEvaluation(result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.evaluationMetrics.RecordEvaluation(result, duration)
}

// RecordDecision records that a rule produced a decision.
//
// Parameters:
//   - ruleID: identifier of the rule that matched
func (c *Collector) RecordDecision(ruleID string) {
	if !c.config.Enabled {
		return
	}

	// Bound rule_id cardinality across ruleset reloads
	if !c.cardinalityLimiter.Allow("decision:" + ruleID) {
		ruleID = "other"
	}

	c.evaluationMetrics.RecordDecision(ruleID)
}

// RecordRulesetLoad records a ruleset load attempt.
//
// Parameters:
//   - status: load outcome (StatusSuccess, StatusFailure)
func (c *Collector) RecordRulesetLoad(status string) {
	if !c.config.Enabled {
		return
	}

	c.rulesetMetrics.RecordLoad(status)
}

// SetActiveRuleset updates the gauges describing the active ruleset. The
// previous ruleset's info series is dropped so only one sha/version pair is
// ever exposed at a time.
//
// Parameters:
//   - sha: canonical ruleset hash
//   - version: ruleset document version string
//   - ruleCount: number of rules in the ruleset
func (c *Collector) SetActiveRuleset(sha, version string, ruleCount int) {
	if !c.config.Enabled {
		return
	}

	c.rulesetMetrics.SetActive(sha, version, ruleCount)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
