package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunValidateValidRuleset(t *testing.T) {
	validateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	validateFlags.format = "text"

	if err := runValidate(nil, []string{}); err != nil {
		t.Errorf("runValidate() with valid ruleset returned error: %v", err)
	}
}

func TestRunValidateUnknownConditionType(t *testing.T) {
	validateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testBadConditionYAML)
	validateFlags.format = "text"

	if err := runValidate(nil, []string{}); err == nil {
		t.Error("runValidate() with unknown condition type should return error")
	}
}

func TestRunValidateDuplicateRuleIDs(t *testing.T) {
	validateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testDuplicateIDYAML)
	validateFlags.format = "text"

	if err := runValidate(nil, []string{}); err == nil {
		t.Error("runValidate() with duplicate rule ids should return error")
	}
}

func TestRunValidateNonexistentFile(t *testing.T) {
	validateFlags.rulesetFile = filepath.Join(t.TempDir(), "missing.yaml")
	validateFlags.format = "text"

	if err := runValidate(nil, []string{}); err == nil {
		t.Error("runValidate() with nonexistent file should return error")
	}
}

func TestRunValidateJSONFormat(t *testing.T) {
	validateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	validateFlags.format = "json"

	if err := runValidate(nil, []string{}); err != nil {
		t.Errorf("runValidate() with JSON format returned error: %v", err)
	}
}

func TestRunValidateUnknownFormat(t *testing.T) {
	validateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	validateFlags.format = "junit"

	if err := runValidate(nil, []string{}); err == nil {
		t.Error("runValidate() with unknown format should return error")
	}
}

func TestValidateRulesetFile(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantValid bool
	}{
		{
			name:      "valid ruleset",
			doc:       testRulesetYAML,
			wantValid: true,
		},
		{
			name:      "unknown condition type",
			doc:       testBadConditionYAML,
			wantValid: false,
		},
		{
			name:      "duplicate rule ids",
			doc:       testDuplicateIDYAML,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "rules.yaml", tt.doc)

			report := validateRulesetFile(path)
			if report.Valid != tt.wantValid {
				t.Fatalf("validateRulesetFile().Valid = %v, want %v (error: %s)",
					report.Valid, tt.wantValid, report.Error)
			}
			if !tt.wantValid {
				if report.Error == "" {
					t.Error("invalid report should carry an error message")
				}
				return
			}
			if report.RuleCount != 2 {
				t.Errorf("RuleCount = %d, want 2", report.RuleCount)
			}
			if len(report.RuleSHA) != 64 {
				t.Errorf("RuleSHA = %q, want a 64-char hex digest", report.RuleSHA)
			}
		})
	}
}

func TestValidateRulesetFileNonexistent(t *testing.T) {
	report := validateRulesetFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if report.Valid {
		t.Error("validateRulesetFile() with nonexistent file should not be valid")
	}
}

// Test fixtures shared across command tests.

const testRulesetYAML = `
version: "1.0"
rules:
  - id: high-value
    when:
      type: greater_than
      field: amount
      value: 1000
    then:
      outcome:
        decision: review
  - id: blocked-country
    when:
      type: in
      field: country
      values: [KP, IR]
    then:
      outcome:
        decision: deny
`

const testBadConditionYAML = `
version: "1.0"
rules:
  - id: bad
    when:
      type: matches_regex
      field: name
      value: ".*"
    then:
      outcome:
        decision: deny
`

const testDuplicateIDYAML = `
version: "1.0"
rules:
  - id: same
    when:
      type: equals
      field: a
      value: 1
    then:
      outcome:
        decision: allow
  - id: same
    when:
      type: equals
      field: b
      value: 2
    then:
      outcome:
        decision: deny
`

// writeTempFile writes content to a fresh temp file and returns its path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
