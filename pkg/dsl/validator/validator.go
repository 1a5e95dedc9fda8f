package validator

import (
	"fmt"

	"mercator-hq/themis/pkg/dsl/ast"
)

// ValidationError reports a rule that failed safety validation.
type ValidationError struct {
	RuleID  string // id of the offending rule, empty for ruleset-level failures
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule validation: %s", e.Message)
	}
	return fmt.Sprintf("rule validation: rule %q: %s", e.RuleID, e.Message)
}

// Validator checks that every condition tree in a ruleset is built solely
// from recognized grammar variants.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate walks every rule's condition tree and returns the first safety
// violation found, or nil if the ruleset is safe to evaluate.
func (v *Validator) Validate(rs *ast.RuleSet) error {
	if rs == nil {
		return &ValidationError{Message: "ruleset is nil"}
	}

	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if rule.ID == "" {
			return &ValidationError{Message: fmt.Sprintf("rule at index %d has empty id", i)}
		}
		if rule.When == nil {
			return &ValidationError{RuleID: rule.ID, Message: "missing condition tree"}
		}
		if err := v.validateCondition(rule.ID, rule.When); err != nil {
			return err
		}
	}

	return nil
}

// validateCondition checks a single condition node and recurses into the
// children of the logical variants. The default arm rejects anything
// outside the closed grammar, including third-party Condition
// implementations.
func (v *Validator) validateCondition(ruleID string, cond ast.Condition) error {
	switch c := cond.(type) {
	case *ast.And:
		return v.validateChildren(ruleID, ast.TypeAnd, c.Conditions)

	case *ast.Or:
		return v.validateChildren(ruleID, ast.TypeOr, c.Conditions)

	case *ast.Not:
		if c.Condition == nil {
			return &ValidationError{RuleID: ruleID, Message: "'not' condition has nil child"}
		}
		return v.validateCondition(ruleID, c.Condition)

	case *ast.Equals, *ast.GreaterThan, *ast.LessThan, *ast.Contains, *ast.In:
		// Leaf variants carry only literal operands and are safe by
		// construction.
		return nil

	default:
		return &ValidationError{
			RuleID:  ruleID,
			Message: fmt.Sprintf("unrecognized condition variant %T", cond),
		}
	}
}

func (v *Validator) validateChildren(ruleID, parent string, children []ast.Condition) error {
	for i, child := range children {
		if child == nil {
			return &ValidationError{
				RuleID:  ruleID,
				Message: fmt.Sprintf("%q condition has nil child at index %d", parent, i),
			}
		}
		if err := v.validateCondition(ruleID, child); err != nil {
			return err
		}
	}
	return nil
}
