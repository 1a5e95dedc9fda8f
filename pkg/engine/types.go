package engine

import (
	"time"

	"mercator-hq/themis/pkg/dsl/ast"
)

// Event is the input to evaluation: a flat mapping of field names to
// values. Values use the same model as condition operands: nil, bool,
// float64, string, []any, or map[string]any. Callers producing events
// from decoded JSON or YAML get this shape for free; others can run
// values through ast.NormalizeValue first.
type Event map[string]any

// Decision records the outcome of a successful rule match. It is
// immutable once constructed and is not retained by the engine.
type Decision struct {
	// RuleID identifies the rule that matched.
	RuleID string `json:"rule_id"`

	// Outcome is a deep copy of the matching rule's outcome. Mutating it
	// never affects the loaded ruleset.
	Outcome map[string]any `json:"outcome"`

	// MatchedConditions lists identifiers describing what matched. It
	// currently holds exactly the matching rule's id; sub-condition
	// attribution is not recorded.
	MatchedConditions []string `json:"matched_conditions"`

	// ElapsedMicros is the time from the start of the evaluation call to
	// the match, in microseconds.
	ElapsedMicros int64 `json:"elapsed_us"`

	// Timestamp is the wall-clock time of decision construction, in
	// seconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`

	// RulesetSHA is the content hash of the ruleset that produced this
	// decision, for audit provenance.
	RulesetSHA string `json:"rule_sha"`
}

// newDecision builds the decision record for a matched rule.
func newDecision(rule *ast.Rule, sha string, start time.Time) *Decision {
	return &Decision{
		RuleID:            rule.ID,
		Outcome:           ast.CloneOutcome(rule.Then.Outcome),
		MatchedConditions: []string{rule.ID},
		ElapsedMicros:     time.Since(start).Microseconds(),
		Timestamp:         time.Now().Unix(),
		RulesetSHA:        sha,
	}
}
