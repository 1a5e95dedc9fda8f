// Package engine evaluates events against a loaded ruleset and produces
// decision records.
//
// The engine holds at most one active ruleset at a time, replaced wholesale
// by Load. Load validates the ruleset (duplicate rule ids, then the safety
// validator), computes its canonical SHA-256 content hash, and publishes
// the new (ruleset, hash) snapshot with a single atomic swap. A failed
// load leaves the previous snapshot serving.
//
// Evaluate walks rules in declared order and returns a Decision for the
// first rule whose condition tree matches the event, or (nil, nil) when
// nothing matches. Condition trees are evaluated depth-first with
// left-to-right short-circuiting. Evaluation is a pure read: concurrent
// Evaluate calls share the snapshot safely and never observe a partially
// replaced ruleset.
package engine
