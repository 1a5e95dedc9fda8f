// Package metrics provides Prometheus metrics collection for Themis.
//
// # Overview
//
// The metrics package tracks event evaluation and the ruleset lifecycle.
// All metrics are registered against a private Prometheus registry owned by
// the Collector, so Themis metrics never collide with other instrumentation
// in the embedding process.
//
// # Metrics
//
//	themis_evaluations_total{result}        Evaluations by result (match, no_match, error)
//	themis_evaluation_duration_seconds      Evaluation latency histogram
//	themis_decisions_total{rule_id}         Decisions produced per rule
//	themis_ruleset_loads_total{status}      Ruleset load attempts (success, failure)
//	themis_ruleset_rules                    Rules in the active ruleset
//	themis_ruleset_info{sha,version}        Active ruleset identity (constant 1)
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, nil)
//
//	collector.RecordEvaluation(metrics.ResultMatch, 120*time.Microsecond)
//	collector.RecordDecision("high-value-us")
//	collector.RecordRulesetLoad(metrics.StatusSuccess)
//	collector.SetActiveRuleset(sha, "1.2", 14)
//
//	http.Handle("/metrics", collector.Handler())
//
// # Cardinality Management
//
// Rule IDs are label values and accumulate across ruleset reloads, so the
// collector caps unique rule_id values at 10,000; past that, new rules are
// aggregated under "other".
package metrics
