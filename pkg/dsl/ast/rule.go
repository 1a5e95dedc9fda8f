package ast

// Rule maps a boolean condition to an outcome. Rules are evaluated in
// declaration order and the first rule whose When condition is true decides
// the event, so rule order is semantically significant.
type Rule struct {
	ID          string    `json:"id"`                    // unique within a ruleset, non-empty
	Description string    `json:"description,omitempty"` // human-readable intent
	Severity    string    `json:"severity,omitempty"`    // free-form severity label
	Tags        []string  `json:"tags,omitempty"`        // categorization tags
	When        Condition `json:"when"`
	Then        Action    `json:"then"`

	// Provenance for machine-drafted rules.
	GeneratedByLLM bool   `json:"generated_by_llm,omitempty"`
	PromptSHA      string `json:"prompt_sha,omitempty"` // SHA-256 of the generating prompt
}

// Action is the outcome attached to a rule. The outcome mapping is copied
// verbatim into the Decision when the rule fires; the engine never
// interprets its contents.
type Action struct {
	Outcome map[string]any `json:"outcome"`
}
