package engine

import (
	"log/slog"
	"strings"

	"mercator-hq/themis/pkg/dsl/ast"
)

// evaluator walks condition trees against events. It holds no state
// between calls beyond its logger and is safe for concurrent use.
type evaluator struct {
	logger *slog.Logger
}

// eval evaluates a condition tree depth-first with left-to-right
// short-circuiting: And stops at the first false child, Or at the first
// true child. Leaf policy, applied uniformly: a missing field, or a field
// whose value does not fit the operator's required type, evaluates to
// false, never an error. The default arm covers nodes outside the grammar,
// which the validator rejects at load time.
func (ev *evaluator) eval(cond ast.Condition, event Event) bool {
	switch c := cond.(type) {
	case *ast.And:
		for _, child := range c.Conditions {
			if !ev.eval(child, event) {
				return false
			}
		}
		return true

	case *ast.Or:
		for _, child := range c.Conditions {
			if ev.eval(child, event) {
				return true
			}
		}
		return false

	case *ast.Not:
		return !ev.eval(c.Condition, event)

	case *ast.Equals:
		actual, ok := event[c.Field]
		matched := ok && equalValues(actual, c.Value)
		ev.logLeaf(ast.TypeEquals, c.Field, matched)
		return matched

	case *ast.GreaterThan:
		n, ok := numericValue(event[c.Field])
		matched := ok && n > c.Value
		ev.logLeaf(ast.TypeGreaterThan, c.Field, matched)
		return matched

	case *ast.LessThan:
		n, ok := numericValue(event[c.Field])
		matched := ok && n < c.Value
		ev.logLeaf(ast.TypeLessThan, c.Field, matched)
		return matched

	case *ast.Contains:
		s, ok := event[c.Field].(string)
		matched := ok && strings.Contains(s, c.Value)
		ev.logLeaf(ast.TypeContains, c.Field, matched)
		return matched

	case *ast.In:
		actual, ok := event[c.Field]
		if !ok {
			ev.logLeaf(ast.TypeIn, c.Field, false)
			return false
		}
		for _, v := range c.Values {
			if equalValues(actual, v) {
				ev.logLeaf(ast.TypeIn, c.Field, true)
				return true
			}
		}
		ev.logLeaf(ast.TypeIn, c.Field, false)
		return false

	default:
		return false
	}
}

// logLeaf records a leaf evaluation for tracing.
func (ev *evaluator) logLeaf(condType, field string, matched bool) {
	ev.logger.Debug("condition evaluated",
		"type", condType,
		"field", field,
		"matched", matched,
	)
}
