// Package ast defines the typed representation of a themis ruleset: the
// closed condition grammar, rules, outcomes, and ruleset metadata.
//
// # Condition Grammar
//
// A condition is a recursive boolean expression tree over a keyed event.
// The grammar is a closed, sealed variant set:
//
//	And          all children true (empty list is vacuously true)
//	Or           any child true (empty list is vacuously false)
//	Not          child is false
//	Equals       event field present and structurally equal to a literal
//	GreaterThan  event field present, numeric, and greater than a literal
//	LessThan     event field present, numeric, and less than a literal
//	Contains     event field present, a string, containing a substring
//	In           event field present and equal to some element of a list
//
// Only the types in this package implement Condition (the interface has an
// unexported marker method), so the evaluator and validator can switch over
// the full variant set. No variant can invoke external code, perform I/O,
// or read anything beyond the supplied event and its own literal operands.
//
// # Wire Form
//
// Conditions serialize to a tagged object form shared by the YAML and JSON
// document formats, e.g.
//
//	{"type": "and", "conditions": [
//	  {"type": "greater_than", "field": "amount", "value": 1000},
//	  {"type": "equals", "field": "country", "value": "US"}
//	]}
//
// Serialization is the input to the ruleset content hash, so every variant
// implements json.Marshaler deterministically. Deserialization of documents
// lives in package parser; this package never decodes raw text.
//
// # Value Model
//
// Literal operands and event fields use a single value model: nil, bool,
// float64, string, []any, and map[string]any. NormalizeValue converts
// decoded document values (YAML ints, json.Number) into this model so that
// structurally identical documents produce identical rulesets and hashes
// regardless of their source format.
//
// # Immutability
//
// AST nodes are treated as immutable after construction. The parser builds
// a ruleset once; the validator and engine only read it.
package ast
