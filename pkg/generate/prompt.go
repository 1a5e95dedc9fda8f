package generate

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert policy analyst who converts plain-language " +
	"policy statements into deterministic decision rules. Respond with a single " +
	"fenced YAML code block containing the ruleset document and nothing else."

// promptGrammar pins the exact document shape and the closed condition
// grammar. The model cannot be trusted to stay inside the grammar on its
// own; spelling out every form keeps rejects rare.
const promptGrammar = `
The ruleset document format:

version: "1.0"
rules:
  - id: unique_rule_id
    description: what the rule decides
    severity: high|medium|low
    tags: [category]
    when:
      <condition>
    then:
      outcome:
        decision: approve|reject|review
        reason: short explanation

Conditions are mappings with a "type" field. The only supported forms:

  {type: equals, field: name, value: expected}
  {type: greater_than, field: name, value: number}
  {type: less_than, field: name, value: number}
  {type: contains, field: name, value: substring or element}
  {type: in, field: name, values: [a, b, c]}
  {type: and, conditions: [<condition>, ...]}
  {type: or, conditions: [<condition>, ...]}
  {type: not, condition: <condition>}

Requirements:
1. Rules must be deterministic: no randomness, no time, no lookups.
2. Conditions read event fields only; outcomes are static mappings.
3. Rules are evaluated top to bottom and the first match wins, so order
   them from most specific to least specific.
4. Every rule id must be unique and in kebab-case.
`

// BuildPrompt renders the drafting prompt for a set of policy statements.
func BuildPrompt(statements []string) string {
	var b strings.Builder
	b.WriteString("Convert the following policy statements into one ruleset document.\n\n")
	b.WriteString("Policy statements:\n")
	for i, s := range statements {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(s))
	}
	b.WriteString(promptGrammar)
	return b.String()
}

// ExtractYAML pulls the YAML body out of a chat reply. It takes the
// contents of the first fenced code block, skipping the fence's language
// tag, and falls back to the whole reply when no fence is present.
func ExtractYAML(reply string) string {
	const fence = "```"

	start := strings.Index(reply, fence)
	if start < 0 {
		return strings.TrimSpace(reply)
	}

	rest := reply[start+len(fence):]
	// The remainder of the fence line is the info string ("yaml"), not
	// document content.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		return ""
	}

	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
