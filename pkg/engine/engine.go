package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/dsl/validator"
)

// snapshot pairs a validated ruleset with its content hash. Snapshots are
// immutable after construction and replaced as a unit.
type snapshot struct {
	ruleset *ast.RuleSet
	sha     string
}

// Engine evaluates events against the active ruleset. The zero value is
// not usable; construct with New.
type Engine struct {
	// mu guards active. Load takes the write lock for the pointer swap
	// only; evaluation reads the pointer under the read lock and then
	// works lock-free on the immutable snapshot.
	mu     sync.RWMutex
	active *snapshot

	validator *validator.Validator
	eval      *evaluator
	logger    *slog.Logger
}

// New creates an engine with no ruleset loaded.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		validator: validator.NewValidator(),
		eval:      &evaluator{logger: logger},
		logger:    logger,
	}
}

// Load validates, hashes, and atomically activates a ruleset, replacing
// the previously active one. Validation order: duplicate rule ids first
// (the first duplicate found is reported), then the safety validator.
// On any failure the engine keeps serving its previous ruleset, if one
// was loaded.
func (e *Engine) Load(rs *ast.RuleSet) error {
	if rs != nil {
		seen := make(map[string]struct{}, len(rs.Rules))
		for i := range rs.Rules {
			id := rs.Rules[i].ID
			if _, dup := seen[id]; dup {
				return &validator.ValidationError{
					RuleID:  id,
					Message: "duplicate id",
				}
			}
			seen[id] = struct{}{}
		}
	}

	if err := e.validator.Validate(rs); err != nil {
		return err
	}

	sha, err := CanonicalHash(rs)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.active = &snapshot{ruleset: rs, sha: sha}
	e.mu.Unlock()

	e.logger.Info("ruleset loaded",
		"version", rs.Version,
		"rule_count", len(rs.Rules),
		"sha", sha,
	)

	return nil
}

// Evaluate matches an event against the active ruleset. Rules are tried
// in declared order; the first rule whose condition tree evaluates true
// produces the Decision. A no-match is (nil, nil), not an error. Fails
// with ErrNoRuleset if no ruleset has ever been loaded successfully.
// Evaluation never mutates the ruleset or the event.
func (e *Engine) Evaluate(event Event) (*Decision, error) {
	snap := e.snapshot()
	if snap == nil {
		return nil, ErrNoRuleset
	}
	return e.evaluateAgainst(snap, event), nil
}

// EvaluateMany evaluates a batch of events in order against a single
// snapshot of the active ruleset, so a concurrent Load cannot split the
// batch across two rulesets. The result has one entry per event, nil
// where no rule matched.
func (e *Engine) EvaluateMany(events []Event) ([]*Decision, error) {
	snap := e.snapshot()
	if snap == nil {
		return nil, ErrNoRuleset
	}

	decisions := make([]*Decision, len(events))
	for i, event := range events {
		decisions[i] = e.evaluateAgainst(snap, event)
	}
	return decisions, nil
}

// evaluateAgainst runs the first-match scan for one event.
func (e *Engine) evaluateAgainst(snap *snapshot, event Event) *Decision {
	start := time.Now()

	for i := range snap.ruleset.Rules {
		rule := &snap.ruleset.Rules[i]
		if e.eval.eval(rule.When, event) {
			e.logger.Debug("rule matched",
				"rule_id", rule.ID,
				"sha", snap.sha,
			)
			return newDecision(rule, snap.sha, start)
		}
	}

	return nil
}

// RulesetSHA returns the content hash of the active ruleset, or false if
// none is loaded.
func (e *Engine) RulesetSHA() (string, bool) {
	snap := e.snapshot()
	if snap == nil {
		return "", false
	}
	return snap.sha, true
}

// ActiveRuleSet returns the active ruleset, or nil if none is loaded.
// The returned ruleset is shared with concurrent evaluations and must be
// treated as read-only.
func (e *Engine) ActiveRuleSet() *ast.RuleSet {
	snap := e.snapshot()
	if snap == nil {
		return nil
	}
	return snap.ruleset
}

// RuleCount returns the number of rules in the active ruleset, or zero if
// none is loaded.
func (e *Engine) RuleCount() int {
	snap := e.snapshot()
	if snap == nil {
		return 0
	}
	return len(snap.ruleset.Rules)
}

// snapshot returns the current (ruleset, sha) pair, or nil.
func (e *Engine) snapshot() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// String describes the engine state for logs and diagnostics.
func (e *Engine) String() string {
	snap := e.snapshot()
	if snap == nil {
		return "engine(no ruleset)"
	}
	return fmt.Sprintf("engine(version=%s rules=%d sha=%.12s)",
		snap.ruleset.Version, len(snap.ruleset.Rules), snap.sha)
}
