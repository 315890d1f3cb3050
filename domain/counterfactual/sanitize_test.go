package counterfactual

import (
	"strings"
	"testing"
)

func TestSanitizeTargetObject(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"empty", "", "object"},
		{"whitespace only", "   ", "object"},
		{"already canonical", "crosswalk marking", "crosswalk marking"},
		{"parenthetical and clause", "A streetlight (rusted) that needs repair", "streetlight"},
		{"bracket", "bench [wooden]", "bench"},
		{"brace", "fence {metal}", "fence"},
		{"colon", "tree canopy: dense", "tree canopy"},
		{"semicolon", "curb; cracked", "curb"},
		{"dash clause", "road sign - faded", "road sign"},
		{"with clause", "wall with graffiti", "wall"},
		{"featuring clause", "plaza featuring fountains", "plaza"},
		{"that clause", "pole that leans", "pole"},
		{"to clause", "sidewalk to the left", "sidewalk"},
		{"leading article a", "a streetlight", "streetlight"},
		{"leading article an", "an awning", "awning"},
		{"leading article the", "The crosswalk", "crosswalk"},
		{"quotes stripped", `"street lamp"`, "street lamp"},
		{"trailing punctuation", "mailbox.,- ", "mailbox"},
		{"five words capped", "old rusty green park bench", "old rusty green park"},
		{"only article", "the", "object"},
		{"earliest marker wins", "bench: old (wood)", "bench"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTargetObject(tt.raw); got != tt.expected {
				t.Errorf("SanitizeTargetObject(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestSanitizeTargetObject_Properties(t *testing.T) {
	inputs := []string{
		"", "object", "A big (huge) thing that moves to nowhere; really",
		"the the the", "(((", "…", "'';;::", "one two three four five six",
	}

	for _, raw := range inputs {
		got := SanitizeTargetObject(raw)
		if got == "" {
			t.Errorf("SanitizeTargetObject(%q) returned empty string", raw)
		}
		if n := len(strings.Fields(got)); n > 4 {
			t.Errorf("SanitizeTargetObject(%q) = %q has %d words, want <= 4", raw, got, n)
		}
		for _, forbidden := range []string{"(", "[", "{", ":", ";"} {
			if strings.Contains(got, forbidden) {
				t.Errorf("SanitizeTargetObject(%q) = %q contains %q", raw, got, forbidden)
			}
		}
		lower := strings.ToLower(got)
		for _, article := range []string{"a ", "an ", "the "} {
			if strings.HasPrefix(lower, article) {
				t.Errorf("SanitizeTargetObject(%q) = %q starts with article", raw, got)
			}
		}
	}
}
