package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/themis/pkg/dsl/ast"
)

// Format identifies a ruleset document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath returns the document format implied by a file extension.
// Anything that is not .json is treated as YAML (JSON is a YAML subset, but
// keeping the two decoders separate preserves their native error messages).
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parser decodes ruleset documents into the typed AST.
type Parser struct{}

// NewParser creates a ruleset document parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a ruleset document, choosing the format by
// file extension.
func (p *Parser) ParseFile(path string) (*ast.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset file %q: %w", path, err)
	}
	return p.ParseBytes(data, FormatForPath(path), path)
}

// ParseBytes parses a ruleset document in the given format. The sourcePath
// is only used in error messages and may be empty.
func (p *Parser) ParseBytes(data []byte, format Format, sourcePath string) (*ast.RuleSet, error) {
	var doc rulesetDoc
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, newParseError(format, sourcePath, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, newParseError(format, sourcePath, err)
		}
	default:
		return nil, newParseError(format, sourcePath, fmt.Errorf("unsupported format %q", format))
	}

	rs, err := p.buildRuleSet(&doc)
	if err != nil {
		return nil, newParseError(format, sourcePath, err)
	}
	return rs, nil
}

// ParseYAML parses an in-memory YAML ruleset document.
func (p *Parser) ParseYAML(data []byte) (*ast.RuleSet, error) {
	return p.ParseBytes(data, FormatYAML, "")
}

// ParseJSON parses an in-memory JSON ruleset document.
func (p *Parser) ParseJSON(data []byte) (*ast.RuleSet, error) {
	return p.ParseBytes(data, FormatJSON, "")
}

// rulesetDoc is the intermediate decoded form shared by both formats.
// Conditions stay generic here; buildCondition turns them into typed nodes.
type rulesetDoc struct {
	Rules    []ruleDoc      `yaml:"rules" json:"rules"`
	Version  string         `yaml:"version" json:"version"`
	Metadata map[string]any `yaml:"metadata" json:"metadata"`
}

type ruleDoc struct {
	ID             string    `yaml:"id" json:"id"`
	Description    string    `yaml:"description" json:"description"`
	Severity       string    `yaml:"severity" json:"severity"`
	Tags           []string  `yaml:"tags" json:"tags"`
	When           any       `yaml:"when" json:"when"`
	Then           actionDoc `yaml:"then" json:"then"`
	GeneratedByLLM bool      `yaml:"generated_by_llm" json:"generated_by_llm"`
	PromptSHA      string    `yaml:"prompt_sha" json:"prompt_sha"`
}

type actionDoc struct {
	Outcome map[string]any `yaml:"outcome" json:"outcome"`
}

func (p *Parser) buildRuleSet(doc *rulesetDoc) (*ast.RuleSet, error) {
	if doc.Rules == nil {
		return nil, fmt.Errorf("rules sequence is required")
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("version is required")
	}

	rs := &ast.RuleSet{
		Rules:   make([]ast.Rule, 0, len(doc.Rules)),
		Version: doc.Version,
	}
	if doc.Metadata != nil {
		rs.Metadata = ast.NormalizeValue(doc.Metadata).(map[string]any)
	}

	for i, rd := range doc.Rules {
		rule, err := p.buildRule(&rd)
		if err != nil {
			if rd.ID != "" {
				return nil, fmt.Errorf("rules[%d] (id %q): %w", i, rd.ID, err)
			}
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rs.Rules = append(rs.Rules, *rule)
	}

	return rs, nil
}

func (p *Parser) buildRule(rd *ruleDoc) (*ast.Rule, error) {
	if rd.ID == "" {
		return nil, fmt.Errorf("rule id is required")
	}
	if rd.When == nil {
		return nil, fmt.Errorf("when condition is required")
	}
	if rd.Then.Outcome == nil {
		return nil, fmt.Errorf("then.outcome mapping is required")
	}

	when, err := p.buildCondition(rd.When)
	if err != nil {
		return nil, fmt.Errorf("when: %w", err)
	}

	return &ast.Rule{
		ID:             rd.ID,
		Description:    rd.Description,
		Severity:       rd.Severity,
		Tags:           rd.Tags,
		When:           when,
		Then:           ast.Action{Outcome: ast.NormalizeValue(rd.Then.Outcome).(map[string]any)},
		GeneratedByLLM: rd.GeneratedByLLM,
		PromptSHA:      rd.PromptSHA,
	}, nil
}

// buildCondition turns a generic decoded condition node into its typed AST
// variant, dispatching on the "type" tag.
func (p *Parser) buildCondition(raw any) (ast.Condition, error) {
	node, ok := asStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("condition must be a mapping, got %T", raw)
	}

	typeTag, ok := node["type"].(string)
	if !ok {
		return nil, fmt.Errorf("condition is missing a \"type\" tag")
	}

	switch typeTag {
	case ast.TypeAnd:
		children, err := p.buildChildren(node, typeTag)
		if err != nil {
			return nil, err
		}
		return &ast.And{Conditions: children}, nil

	case ast.TypeOr:
		children, err := p.buildChildren(node, typeTag)
		if err != nil {
			return nil, err
		}
		return &ast.Or{Conditions: children}, nil

	case ast.TypeNot:
		rawChild, ok := node["condition"]
		if !ok || rawChild == nil {
			return nil, fmt.Errorf("not condition requires a \"condition\" child")
		}
		child, err := p.buildCondition(rawChild)
		if err != nil {
			return nil, err
		}
		return &ast.Not{Condition: child}, nil

	case ast.TypeEquals:
		field, err := fieldName(node, typeTag)
		if err != nil {
			return nil, err
		}
		value, ok := node["value"]
		if !ok {
			return nil, fmt.Errorf("equals condition requires a \"value\"")
		}
		return &ast.Equals{Field: field, Value: ast.NormalizeValue(value)}, nil

	case ast.TypeGreaterThan, ast.TypeLessThan:
		field, err := fieldName(node, typeTag)
		if err != nil {
			return nil, err
		}
		value, err := numericLiteral(node, typeTag)
		if err != nil {
			return nil, err
		}
		if typeTag == ast.TypeGreaterThan {
			return &ast.GreaterThan{Field: field, Value: value}, nil
		}
		return &ast.LessThan{Field: field, Value: value}, nil

	case ast.TypeContains:
		field, err := fieldName(node, typeTag)
		if err != nil {
			return nil, err
		}
		value, ok := node["value"].(string)
		if !ok {
			return nil, fmt.Errorf("contains condition requires a string \"value\"")
		}
		return &ast.Contains{Field: field, Value: value}, nil

	case ast.TypeIn:
		field, err := fieldName(node, typeTag)
		if err != nil {
			return nil, err
		}
		rawValues, ok := node["values"].([]any)
		if !ok {
			return nil, fmt.Errorf("in condition requires a \"values\" sequence")
		}
		values := make([]any, len(rawValues))
		for i, v := range rawValues {
			values[i] = ast.NormalizeValue(v)
		}
		return &ast.In{Field: field, Values: values}, nil

	default:
		return nil, fmt.Errorf("unknown condition type %q", typeTag)
	}
}

func (p *Parser) buildChildren(node map[string]any, typeTag string) ([]ast.Condition, error) {
	rawChildren, ok := node["conditions"].([]any)
	if !ok {
		return nil, fmt.Errorf("%s condition requires a \"conditions\" sequence", typeTag)
	}
	children := make([]ast.Condition, 0, len(rawChildren))
	for i, rawChild := range rawChildren {
		child, err := p.buildCondition(rawChild)
		if err != nil {
			return nil, fmt.Errorf("conditions[%d]: %w", i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func fieldName(node map[string]any, typeTag string) (string, error) {
	field, ok := node["field"].(string)
	if !ok {
		return "", fmt.Errorf("%s condition requires a string \"field\"", typeTag)
	}
	return field, nil
}

func numericLiteral(node map[string]any, typeTag string) (float64, error) {
	raw, ok := node["value"]
	if !ok {
		return 0, fmt.Errorf("%s condition requires a numeric \"value\"", typeTag)
	}
	switch v := ast.NormalizeValue(raw).(type) {
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("%s condition requires a numeric \"value\", got %T", typeTag, raw)
	}
}

// asStringMap accepts both decoder map shapes. yaml.v3 produces
// map[string]any for string-keyed mappings and map[any]any otherwise.
func asStringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}
