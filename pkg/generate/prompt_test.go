package generate

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{
		"Transactions over 10000 need review.",
		"  Blocked countries are rejected.  ",
	})

	if !strings.Contains(prompt, "1. Transactions over 10000 need review.") {
		t.Error("prompt missing first numbered statement")
	}
	if !strings.Contains(prompt, "2. Blocked countries are rejected.") {
		t.Error("prompt missing trimmed second statement")
	}
	for _, form := range []string{"equals", "greater_than", "less_than", "contains", "in", "and", "or", "not"} {
		if !strings.Contains(prompt, "{type: "+form) {
			t.Errorf("prompt grammar missing %q form", form)
		}
	}
	if !strings.Contains(prompt, "first match wins") {
		t.Error("prompt missing evaluation-order instruction")
	}
}

func TestExtractYAML(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "fenced with tag",
			reply: "Sure!\n```yaml\nversion: \"1.0\"\n```\nDone.",
			want:  "version: \"1.0\"",
		},
		{
			name:  "fenced without tag",
			reply: "```\nrules: []\n```",
			want:  "rules: []",
		},
		{
			name:  "no fence",
			reply: "  version: \"1.0\"\n",
			want:  "version: \"1.0\"",
		},
		{
			name:  "unclosed fence",
			reply: "```yaml\nversion: \"2.0\"",
			want:  "version: \"2.0\"",
		},
		{
			name:  "fence with no newline",
			reply: "```yaml",
			want:  "",
		},
		{
			name:  "empty reply",
			reply: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractYAML(tt.reply); got != tt.want {
				t.Errorf("ExtractYAML() = %q, want %q", got, tt.want)
			}
		})
	}
}
