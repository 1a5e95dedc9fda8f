package golden

import (
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/engine"
)

// Case is one golden test case: an event to evaluate and the decision it
// must produce. An empty ExpectRuleID asserts that no rule matches.
type Case struct {
	Name         string         `yaml:"name"`
	Event        map[string]any `yaml:"event"`
	ExpectRuleID string         `yaml:"expect_rule_id"`

	// ExpectOutcome, when present, must equal the matched rule's outcome
	// exactly. When nil only the rule id is checked.
	ExpectOutcome map[string]any `yaml:"expect_outcome"`
}

// Result is the verdict for one case. Detail is empty when the case
// passed; otherwise it explains the mismatch in one line.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Decision *engine.Decision
}

// caseFile is the decoded shape of a golden case document.
type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// LoadFile reads and parses a YAML golden case file.
func LoadFile(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file %q: %w", path, err)
	}
	cases, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse case file %q: %w", path, err)
	}
	return cases, nil
}

// Parse decodes a YAML golden case document and validates its shape.
func Parse(data []byte) ([]Case, error) {
	var doc caseFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	if len(doc.Cases) == 0 {
		return nil, fmt.Errorf("document contains no cases")
	}

	seen := make(map[string]bool, len(doc.Cases))
	for i, c := range doc.Cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d: name is required", i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("case %d: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		if c.Event == nil {
			return nil, fmt.Errorf("case %q: event is required", c.Name)
		}
		if c.ExpectOutcome != nil && c.ExpectRuleID == "" {
			return nil, fmt.Errorf("case %q: expect_outcome requires expect_rule_id", c.Name)
		}
	}
	return doc.Cases, nil
}

// Run evaluates every case against the engine's active ruleset and returns
// one result per case, in input order. Evaluation errors (including a
// missing ruleset) fail the case rather than aborting the run.
func Run(eng *engine.Engine, cases []Case) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		results = append(results, runCase(eng, c))
	}
	return results
}

// Passed reports whether every result in the slice passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func runCase(eng *engine.Engine, c Case) Result {
	res := Result{Name: c.Name}

	event := make(engine.Event, len(c.Event))
	for k, v := range c.Event {
		event[k] = ast.NormalizeValue(v)
	}

	decision, err := eng.Evaluate(event)
	if err != nil {
		res.Detail = fmt.Sprintf("evaluation failed: %v", err)
		return res
	}
	res.Decision = decision

	if c.ExpectRuleID == "" {
		if decision != nil {
			res.Detail = fmt.Sprintf("expected no decision, got rule %q", decision.RuleID)
			return res
		}
		res.Passed = true
		return res
	}

	if decision == nil {
		res.Detail = fmt.Sprintf("expected rule %q, got no decision", c.ExpectRuleID)
		return res
	}
	if decision.RuleID != c.ExpectRuleID {
		res.Detail = fmt.Sprintf("expected rule %q, got %q", c.ExpectRuleID, decision.RuleID)
		return res
	}

	if c.ExpectOutcome != nil {
		want, ok := ast.NormalizeValue(c.ExpectOutcome).(map[string]any)
		if !ok {
			res.Detail = fmt.Sprintf("expect_outcome is not a mapping: %v", c.ExpectOutcome)
			return res
		}
		if !reflect.DeepEqual(want, decision.Outcome) {
			res.Detail = fmt.Sprintf("outcome mismatch: expected %v, got %v", want, decision.Outcome)
			return res
		}
	}

	res.Passed = true
	return res
}
