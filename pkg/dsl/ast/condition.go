package ast

import "encoding/json"

// Wire-form type tags for condition nodes. The tag set is part of the
// document format and of the canonical serialization the ruleset hash is
// computed over; changing a tag changes every hash.
const (
	TypeAnd         = "and"
	TypeOr          = "or"
	TypeNot         = "not"
	TypeEquals      = "equals"
	TypeGreaterThan = "greater_than"
	TypeLessThan    = "less_than"
	TypeContains    = "contains"
	TypeIn          = "in"
)

// Condition is a node in a rule's boolean expression tree.
//
// The grammar is closed: the variant types in this package are the only
// implementations, sealed by the unexported marker method. Consumers switch
// over the concrete types; the safety validator rejects anything else
// before a ruleset can be loaded.
type Condition interface {
	// Type returns the node's wire-form type tag.
	Type() string

	isCondition()
}

// And is true when every child condition is true. Children are evaluated
// left to right with short-circuiting; an empty list is vacuously true.
type And struct {
	Conditions []Condition
}

// Or is true when any child condition is true. Children are evaluated left
// to right with short-circuiting; an empty list is vacuously false.
type Or struct {
	Conditions []Condition
}

// Not is true when its child condition is false.
type Not struct {
	Condition Condition
}

// Equals is true when the event field is present and structurally equal to
// Value. Equality is type-sensitive: the string "1" never equals the
// number 1.
type Equals struct {
	Field string
	Value any
}

// GreaterThan is true when the event field is present, numeric, and
// strictly greater than Value. A missing or non-numeric field is false,
// never an error.
type GreaterThan struct {
	Field string
	Value float64
}

// LessThan is true when the event field is present, numeric, and strictly
// less than Value. A missing or non-numeric field is false, never an error.
type LessThan struct {
	Field string
	Value float64
}

// Contains is true when the event field is present, a string, and contains
// Value as a substring.
type Contains struct {
	Field string
	Value string
}

// In is true when the event field is present and structurally equal to some
// element of Values.
type In struct {
	Field  string
	Values []any
}

func (*And) isCondition()         {}
func (*Or) isCondition()          {}
func (*Not) isCondition()         {}
func (*Equals) isCondition()      {}
func (*GreaterThan) isCondition() {}
func (*LessThan) isCondition()    {}
func (*Contains) isCondition()    {}
func (*In) isCondition()          {}

// Type implements Condition.
func (*And) Type() string { return TypeAnd }

// Type implements Condition.
func (*Or) Type() string { return TypeOr }

// Type implements Condition.
func (*Not) Type() string { return TypeNot }

// Type implements Condition.
func (*Equals) Type() string { return TypeEquals }

// Type implements Condition.
func (*GreaterThan) Type() string { return TypeGreaterThan }

// Type implements Condition.
func (*LessThan) Type() string { return TypeLessThan }

// Type implements Condition.
func (*Contains) Type() string { return TypeContains }

// Type implements Condition.
func (*In) Type() string { return TypeIn }

// MarshalJSON emits the tagged wire form. A nil child list serializes as an
// empty sequence so that serialize-then-parse round-trips.
func (c *And) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string      `json:"type"`
		Conditions []Condition `json:"conditions"`
	}{TypeAnd, emptyIfNil(c.Conditions)})
}

// MarshalJSON emits the tagged wire form.
func (c *Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string      `json:"type"`
		Conditions []Condition `json:"conditions"`
	}{TypeOr, emptyIfNil(c.Conditions)})
}

// MarshalJSON emits the tagged wire form.
func (c *Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string    `json:"type"`
		Condition Condition `json:"condition"`
	}{TypeNot, c.Condition})
}

// MarshalJSON emits the tagged wire form.
func (c *Equals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Field string `json:"field"`
		Value any    `json:"value"`
	}{TypeEquals, c.Field, c.Value})
}

// MarshalJSON emits the tagged wire form.
func (c *GreaterThan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Field string  `json:"field"`
		Value float64 `json:"value"`
	}{TypeGreaterThan, c.Field, c.Value})
}

// MarshalJSON emits the tagged wire form.
func (c *LessThan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Field string  `json:"field"`
		Value float64 `json:"value"`
	}{TypeLessThan, c.Field, c.Value})
}

// MarshalJSON emits the tagged wire form.
func (c *Contains) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Field string `json:"field"`
		Value string `json:"value"`
	}{TypeContains, c.Field, c.Value})
}

// MarshalJSON emits the tagged wire form.
func (c *In) MarshalJSON() ([]byte, error) {
	values := c.Values
	if values == nil {
		values = []any{}
	}
	return json.Marshal(struct {
		Type   string `json:"type"`
		Field  string `json:"field"`
		Values []any  `json:"values"`
	}{TypeIn, c.Field, values})
}

func emptyIfNil(conditions []Condition) []Condition {
	if conditions == nil {
		return []Condition{}
	}
	return conditions
}
