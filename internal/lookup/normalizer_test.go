package lookup

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(DefaultPolicy())

	tests := []struct {
		input    string
		expected string
	}{
		{"Sol Ring", "Sol Ring"},
		{"how does Sol Ring work?", "Sol Ring"},
		{"How Does Sol Ring Work", "Sol Ring"},
		{"can you explain Commander's Plate", "Commander's Plate"},
		{"what is lightning bolt", "lightning bolt"},
		{"what does Rhystic Study do", "Rhystic Study"},
		{"explain Doubling Season", "Doubling Season"},
		{"how do   Hallowed    Fountain functions", "Hallowed Fountain"},
		{"tell me about Sylvan Library", "Sylvan Library"},
		{"commanders plate", "commanders plate"}, // punctuation is left to the catalog
		{"Explainer Sol Ring", "Explainer Sol Ring"},
		{"Ring Workshop", "Ring Workshop"},
		{"  Sol   Ring  ", "Sol Ring"},
		{"explain", ""},
		{"how does work", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer(DefaultPolicy())

	inputs := []string{
		"how does Sol Ring work?",
		"how explain does Sol Ring",
		"what is what is Lightning Bolt works works",
		"can you explain how does Rhystic Study function?",
		"work work",
		"works?",
		"Sol Ring work?? work",
		"Commander's Plate",
		"Fire // Ice",
		"   ",
		"explain explain explain",
		"what's Ach! Hans, Run!",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestNormalize_CustomPolicy(t *testing.T) {
	n := NewNormalizer(Policy{
		FillerPhrases:   []string{"rulings on"},
		TrailingFillers: []string{"please"},
	})

	if got := n.Normalize("rulings on Sol Ring please"); got != "Sol Ring" {
		t.Errorf("expected 'Sol Ring', got %q", got)
	}
	// Default fillers are not active under a custom policy.
	if got := n.Normalize("how does Sol Ring work"); got != "how does Sol Ring work" {
		t.Errorf("expected text unchanged, got %q", got)
	}
}

func TestNormalize_EmptyPolicy(t *testing.T) {
	n := NewNormalizer(Policy{})
	if got := n.Normalize(" Sol  Ring? "); got != "Sol Ring" {
		t.Errorf("expected 'Sol Ring', got %q", got)
	}
}
