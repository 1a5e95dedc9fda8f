package main

import (
	"path/filepath"
	"testing"
)

func TestRunEvaluateMatch(t *testing.T) {
	evaluateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	evaluateFlags.eventFile = writeTempFile(t, "event.json", `{"amount": 5000}`)
	evaluateFlags.format = "text"

	if err := runEvaluate(nil, []string{}); err != nil {
		t.Errorf("runEvaluate() with matching event returned error: %v", err)
	}
}

func TestRunEvaluateNoMatch(t *testing.T) {
	evaluateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	evaluateFlags.eventFile = writeTempFile(t, "event.json", `{"amount": 10}`)
	evaluateFlags.format = "text"

	// No match is a successful evaluation, not a command failure.
	if err := runEvaluate(nil, []string{}); err != nil {
		t.Errorf("runEvaluate() with non-matching event returned error: %v", err)
	}
}

func TestRunEvaluateEventArray(t *testing.T) {
	evaluateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	evaluateFlags.eventFile = writeTempFile(t, "events.json",
		`[{"amount": 5000}, {"amount": 10}, {"country": "KP"}]`)
	evaluateFlags.format = "text"

	if err := runEvaluate(nil, []string{}); err != nil {
		t.Errorf("runEvaluate() with event array returned error: %v", err)
	}
}

func TestRunEvaluateJSONFormat(t *testing.T) {
	evaluateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	evaluateFlags.eventFile = writeTempFile(t, "event.json", `{"country": "IR"}`)
	evaluateFlags.format = "json"

	if err := runEvaluate(nil, []string{}); err != nil {
		t.Errorf("runEvaluate() with JSON format returned error: %v", err)
	}
}

func TestRunEvaluateUnknownFormat(t *testing.T) {
	evaluateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	evaluateFlags.eventFile = writeTempFile(t, "event.json", `{"amount": 10}`)
	evaluateFlags.format = "csv"

	if err := runEvaluate(nil, []string{}); err == nil {
		t.Error("runEvaluate() with unknown format should return error")
	}
}

func TestRunEvaluateMissingEventFile(t *testing.T) {
	evaluateFlags.rulesetFile = writeTempFile(t, "rules.yaml", testRulesetYAML)
	evaluateFlags.eventFile = filepath.Join(t.TempDir(), "missing.json")
	evaluateFlags.format = "text"

	if err := runEvaluate(nil, []string{}); err == nil {
		t.Error("runEvaluate() with missing event file should return error")
	}
}

func TestReadEvents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{
			name:  "single object",
			input: `{"amount": 100, "country": "US"}`,
			want:  1,
		},
		{
			name:  "array of objects",
			input: `[{"amount": 100}, {"amount": 200}]`,
			want:  2,
		},
		{
			name:  "leading whitespace",
			input: "\n\t {\"amount\": 100}",
			want:  1,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"amount": `,
			wantErr: true,
		},
		{
			name:    "array of non-objects",
			input:   `[1, 2, 3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "events.json", tt.input)

			events, err := readEvents(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("readEvents() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("readEvents() error = %v", err)
			}
			if len(events) != tt.want {
				t.Fatalf("len(events) = %d, want %d", len(events), tt.want)
			}
		})
	}
}

func TestReadEventsDecodesNumbersAsFloat64(t *testing.T) {
	path := writeTempFile(t, "event.json", `{"amount": 1500}`)

	events, err := readEvents(path)
	if err != nil {
		t.Fatalf("readEvents() error = %v", err)
	}
	if got := events[0]["amount"]; got != float64(1500) {
		t.Errorf("amount = %#v, want float64(1500)", got)
	}
}

func TestReadEventsNonexistentFile(t *testing.T) {
	if _, err := readEvents(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("readEvents() with nonexistent file should return error")
	}
}
