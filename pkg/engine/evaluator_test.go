package engine

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"mercator-hq/themis/pkg/dsl/ast"
)

// leafCounter is a slog.Handler that counts leaf condition evaluations,
// making short-circuit behavior observable.
type leafCounter struct {
	mu    sync.Mutex
	count int
}

func (h *leafCounter) Enabled(context.Context, slog.Level) bool { return true }

func (h *leafCounter) Handle(_ context.Context, r slog.Record) error {
	if r.Message == "condition evaluated" {
		h.mu.Lock()
		h.count++
		h.mu.Unlock()
	}
	return nil
}

func (h *leafCounter) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *leafCounter) WithGroup(string) slog.Handler      { return h }

func (h *leafCounter) reset() {
	h.mu.Lock()
	h.count = 0
	h.mu.Unlock()
}

func (h *leafCounter) leaves() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func newCountingEvaluator() (*evaluator, *leafCounter) {
	counter := &leafCounter{}
	return &evaluator{logger: slog.New(counter)}, counter
}

func TestAndShortCircuitsAtFirstFalse(t *testing.T) {
	ev, counter := newCountingEvaluator()

	cond := &ast.And{Conditions: []ast.Condition{
		&ast.Equals{Field: "a", Value: "no-match"},
		&ast.Equals{Field: "b", Value: "anything"},
		&ast.Equals{Field: "c", Value: "anything"},
	}}

	if ev.eval(cond, Event{"a": "x", "b": "anything", "c": "anything"}) {
		t.Fatal("eval() = true, want false")
	}
	if counter.leaves() != 1 {
		t.Errorf("leaf evaluations = %d, want 1 (and must stop at first false child)", counter.leaves())
	}
}

func TestOrShortCircuitsAtFirstTrue(t *testing.T) {
	ev, counter := newCountingEvaluator()

	cond := &ast.Or{Conditions: []ast.Condition{
		&ast.Equals{Field: "a", Value: "match"},
		&ast.Equals{Field: "b", Value: "anything"},
		&ast.Equals{Field: "c", Value: "anything"},
	}}

	if !ev.eval(cond, Event{"a": "match"}) {
		t.Fatal("eval() = false, want true")
	}
	if counter.leaves() != 1 {
		t.Errorf("leaf evaluations = %d, want 1 (or must stop at first true child)", counter.leaves())
	}
}

func TestLogicalEvaluationIsLeftToRight(t *testing.T) {
	ev, counter := newCountingEvaluator()

	// First two children are true, third is false, fourth never runs.
	cond := &ast.And{Conditions: []ast.Condition{
		&ast.Equals{Field: "a", Value: "yes"},
		&ast.Equals{Field: "b", Value: "yes"},
		&ast.Equals{Field: "c", Value: "no-match"},
		&ast.Equals{Field: "d", Value: "yes"},
	}}

	if ev.eval(cond, Event{"a": "yes", "b": "yes", "c": "yes", "d": "yes"}) {
		t.Fatal("eval() = true, want false")
	}
	if counter.leaves() != 3 {
		t.Errorf("leaf evaluations = %d, want 3", counter.leaves())
	}
}

func TestEmptyLogicalNodes(t *testing.T) {
	ev, _ := newCountingEvaluator()

	if !ev.eval(&ast.And{}, Event{}) {
		t.Error("empty and = false, want true (vacuous truth)")
	}
	if ev.eval(&ast.Or{}, Event{}) {
		t.Error("empty or = true, want false")
	}
}

func TestNotInverts(t *testing.T) {
	ev, _ := newCountingEvaluator()

	inner := &ast.Equals{Field: "status", Value: "active"}
	if ev.eval(&ast.Not{Condition: inner}, Event{"status": "active"}) {
		t.Error("not(true) = true")
	}
	if !ev.eval(&ast.Not{Condition: inner}, Event{"status": "inactive"}) {
		t.Error("not(false) = false")
	}
}

func TestEqualsStrictTyping(t *testing.T) {
	ev, _ := newCountingEvaluator()

	tests := []struct {
		name  string
		cond  ast.Condition
		event Event
		want  bool
	}{
		{
			name:  "number field vs string literal",
			cond:  &ast.Equals{Field: "n", Value: "1"},
			event: Event{"n": 1},
			want:  false,
		},
		{
			name:  "string field vs number literal",
			cond:  &ast.Equals{Field: "n", Value: float64(1)},
			event: Event{"n": "1"},
			want:  false,
		},
		{
			name:  "int field vs float literal compares numerically",
			cond:  &ast.Equals{Field: "n", Value: float64(1000)},
			event: Event{"n": 1000},
			want:  true,
		},
		{
			name:  "bool vs number",
			cond:  &ast.Equals{Field: "b", Value: float64(1)},
			event: Event{"b": true},
			want:  false,
		},
		{
			name:  "null literal matches explicit null field",
			cond:  &ast.Equals{Field: "x", Value: nil},
			event: Event{"x": nil},
			want:  true,
		},
		{
			name:  "null literal does not match missing field",
			cond:  &ast.Equals{Field: "x", Value: nil},
			event: Event{},
			want:  false,
		},
		{
			name:  "missing field is false",
			cond:  &ast.Equals{Field: "absent", Value: "v"},
			event: Event{"present": "v"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ev.eval(tt.cond, tt.event); got != tt.want {
				t.Errorf("eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumericLeafPolicy(t *testing.T) {
	ev, _ := newCountingEvaluator()

	tests := []struct {
		name  string
		cond  ast.Condition
		event Event
		want  bool
	}{
		{"greater_than matches", &ast.GreaterThan{Field: "amount", Value: 1000}, Event{"amount": 1500}, true},
		{"greater_than boundary is exclusive", &ast.GreaterThan{Field: "amount", Value: 1000}, Event{"amount": 1000}, false},
		{"greater_than missing field is false", &ast.GreaterThan{Field: "amount", Value: 1000}, Event{}, false},
		{"greater_than non-numeric field is false", &ast.GreaterThan{Field: "amount", Value: 1000}, Event{"amount": "1500"}, false},
		{"greater_than int event value", &ast.GreaterThan{Field: "amount", Value: 1000}, Event{"amount": 1001}, true},
		{"less_than matches", &ast.LessThan{Field: "score", Value: 0.5}, Event{"score": 0.25}, true},
		{"less_than boundary is exclusive", &ast.LessThan{Field: "score", Value: 0.5}, Event{"score": 0.5}, false},
		{"less_than missing field is false", &ast.LessThan{Field: "score", Value: 0.5}, Event{}, false},
		{"less_than non-numeric field is false", &ast.LessThan{Field: "score", Value: 0.5}, Event{"score": []any{1.0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ev.eval(tt.cond, tt.event); got != tt.want {
				t.Errorf("eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsLeafPolicy(t *testing.T) {
	ev, _ := newCountingEvaluator()

	tests := []struct {
		name  string
		cond  ast.Condition
		event Event
		want  bool
	}{
		{"substring match", &ast.Contains{Field: "email", Value: "@example."}, Event{"email": "a@example.com"}, true},
		{"no substring", &ast.Contains{Field: "email", Value: "@example."}, Event{"email": "a@other.com"}, false},
		{"empty needle always matches strings", &ast.Contains{Field: "email", Value: ""}, Event{"email": "x"}, true},
		{"missing field is false", &ast.Contains{Field: "email", Value: "@"}, Event{}, false},
		{"non-string field is false", &ast.Contains{Field: "email", Value: "1"}, Event{"email": 123}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ev.eval(tt.cond, tt.event); got != tt.want {
				t.Errorf("eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInLeafPolicy(t *testing.T) {
	ev, _ := newCountingEvaluator()

	tests := []struct {
		name  string
		cond  ast.Condition
		event Event
		want  bool
	}{
		{"member", &ast.In{Field: "country", Values: []any{"KP", "IR"}}, Event{"country": "IR"}, true},
		{"non-member", &ast.In{Field: "country", Values: []any{"KP", "IR"}}, Event{"country": "US"}, false},
		{"missing field is false", &ast.In{Field: "country", Values: []any{"KP"}}, Event{}, false},
		{"empty values never matches", &ast.In{Field: "country", Values: nil}, Event{"country": "US"}, false},
		{"numeric member across kinds", &ast.In{Field: "code", Values: []any{float64(404), float64(500)}}, Event{"code": 404}, true},
		{"string never matches number member", &ast.In{Field: "code", Values: []any{float64(404)}}, Event{"code": "404"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ev.eval(tt.cond, tt.event); got != tt.want {
				t.Errorf("eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNestedConditionTree(t *testing.T) {
	ev, _ := newCountingEvaluator()

	// (amount > 1000 AND (country == "US" OR country IN [CA, MX])) AND NOT test account
	cond := &ast.And{Conditions: []ast.Condition{
		&ast.GreaterThan{Field: "amount", Value: 1000},
		&ast.Or{Conditions: []ast.Condition{
			&ast.Equals{Field: "country", Value: "US"},
			&ast.In{Field: "country", Values: []any{"CA", "MX"}},
		}},
		&ast.Not{Condition: &ast.Contains{Field: "email", Value: "@test."}},
	}}

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"us match", Event{"amount": 1500, "country": "US", "email": "a@real.com"}, true},
		{"ca via in", Event{"amount": 1500, "country": "CA", "email": "a@real.com"}, true},
		{"test account excluded", Event{"amount": 1500, "country": "US", "email": "a@test.com"}, false},
		{"amount too low", Event{"amount": 500, "country": "US", "email": "a@real.com"}, false},
		{"country mismatch", Event{"amount": 1500, "country": "DE", "email": "a@real.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ev.eval(cond, tt.event); got != tt.want {
				t.Errorf("eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalNilConditionIsFalse(t *testing.T) {
	ev, _ := newCountingEvaluator()
	if ev.eval(nil, Event{"a": 1}) {
		t.Error("eval(nil) = true, want false")
	}
}
