package ast

// RuleSet is an ordered, versioned collection of rules plus free-form
// metadata, treated as one atomic unit for loading and hashing. Rule order
// is preserved exactly as declared: no reordering, deduplication, or
// priority reinterpretation happens anywhere downstream.
type RuleSet struct {
	Rules    []Rule         `json:"rules"`
	Version  string         `json:"version"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FindRule returns the rule with the given id, or nil if not present.
func (rs *RuleSet) FindRule(id string) *Rule {
	for i := range rs.Rules {
		if rs.Rules[i].ID == id {
			return &rs.Rules[i]
		}
	}
	return nil
}
