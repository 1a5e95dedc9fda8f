// Themis is a rule-based decision engine with an auditable trail.
//
// It evaluates JSON events against versioned YAML rulesets and returns
// first-match decisions, providing:
//   - A closed condition grammar with structural validation
//   - Deterministic first-match evaluation over immutable ruleset snapshots
//   - An HTTP API for evaluation, batch evaluation, and ruleset uploads
//   - SQLite-backed audit records and ruleset version history
//   - LLM-assisted ruleset drafting with provenance stamps
//
// Usage:
//
//	# Start the decision API server
//	themis run
//
//	# Start with custom configuration file
//	themis run --config /path/to/config.yaml
//
//	# Validate a ruleset file
//	themis validate --ruleset rules.yaml
//
//	# Evaluate an event against a ruleset
//	themis evaluate --ruleset rules.yaml --event event.json
//
//	# Run golden regression cases
//	themis test --ruleset rules.yaml --golden cases.yaml
//
//	# Draft a ruleset from policy statements
//	themis gen --output draft.yaml "Transactions over 10000 require review"
//
//	# Show ruleset change history
//	themis log
//
// For complete documentation, see: https://github.com/mercator-hq/themis
package main

func main() {
	Execute()
}
