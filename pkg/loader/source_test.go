package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/dsl/parser"
)

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
        decision: flag
`

func writeRuleset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write ruleset file: %v", err)
	}
	return path
}

func TestFileSource_Load(t *testing.T) {
	path := writeRuleset(t, "rules.yaml", testRulesetYAML)
	src := NewFileSource(path, nil)

	rs, origin, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if origin != path {
		t.Errorf("origin = %q, want %q", origin, path)
	}
	if len(rs.Rules) != 1 || rs.Rules[0].ID != "high-value" {
		t.Errorf("unexpected ruleset: %+v", rs)
	}
	if src.Path() != path {
		t.Errorf("Path() = %q, want %q", src.Path(), path)
	}
}

func TestFileSource_LoadMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"), nil)

	_, _, err := src.Load(context.Background())
	if err == nil {
		t.Fatal("Load() of missing file succeeded")
	}
}

func TestFileSource_LoadDirectory(t *testing.T) {
	src := NewFileSource(t.TempDir(), nil)

	_, _, err := src.Load(context.Background())
	if err == nil {
		t.Fatal("Load() of a directory succeeded")
	}
}

func TestFileSource_LoadParseError(t *testing.T) {
	path := writeRuleset(t, "rules.yaml", "rules: {not: a, sequence: true}\n")
	src := NewFileSource(path, nil)

	_, _, err := src.Load(context.Background())
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want *parser.ParseError", err)
	}
}

func TestMemorySource(t *testing.T) {
	rs := &ast.RuleSet{
		Version: "1.0",
		Rules: []ast.Rule{{
			ID:   "r1",
			When: &ast.Equals{Field: "status", Value: "active"},
			Then: ast.Action{Outcome: map[string]any{"decision": "approve"}},
		}},
	}
	src := NewMemorySource(rs)

	got, origin, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if origin != "memory" {
		t.Errorf("origin = %q, want memory", origin)
	}
	if got != rs {
		t.Error("Load() did not return the stored ruleset")
	}

	replacement := &ast.RuleSet{Version: "2.0", Rules: rs.Rules}
	src.Set(replacement)

	got, _, err = src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Version != "2.0" {
		t.Errorf("Version after Set = %q, want 2.0", got.Version)
	}
}

func TestMemorySource_Empty(t *testing.T) {
	src := NewMemorySource(nil)

	if _, _, err := src.Load(context.Background()); err == nil {
		t.Fatal("Load() on empty memory source succeeded")
	}
}
