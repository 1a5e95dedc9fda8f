// Package validator performs static safety validation of parsed rulesets
// before they are handed to the engine.
//
// The check walks every rule's condition tree and confirms that each node
// is one of the closed set of grammar variants defined in pkg/dsl/ast.
// Conditions are pure predicates over the event: they cannot invoke
// external code, perform I/O, or reach anything beyond the event and
// their own literal operands. Any future grammar variant that weakens
// that guarantee must add its safety rule here, not in the evaluator.
//
// Validation is pure and never mutates the ruleset. Failures are reported
// as *ValidationError carrying the offending rule id.
package validator
