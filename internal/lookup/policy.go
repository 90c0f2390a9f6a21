package lookup

import (
	"strings"
)

// Policy is the data that steers parsing and normalization. It is injected
// into the resolver so tests and deployments can swap it out.
type Policy struct {
	// FillerPhrases are removed wherever they appear as whole words.
	FillerPhrases []string `toml:"filler_phrases"`
	// TrailingFillers are removed only from the end of the text.
	TrailingFillers []string `toml:"trailing_fillers"`
	// KnownSetCodes lets a lowercase trailing token be read as a set code.
	KnownSetCodes []string `toml:"known_set_codes"`
	// ProtectedNames are card names the parser must never split.
	ProtectedNames []string `toml:"protected_names"`
	// Overrides maps a normalized phrase to a canonical card name.
	Overrides map[string]string `toml:"overrides"`
}

// DefaultPolicy returns the built-in filler lists with no overrides.
func DefaultPolicy() Policy {
	return Policy{
		FillerPhrases: []string{
			"can you explain",
			"could you explain",
			"please explain",
			"tell me about",
			"how does",
			"how do",
			"what is",
			"what's",
			"what does",
			"explain",
			"rulings for",
			"rules for",
		},
		TrailingFillers: []string{"work", "works", "function", "functions", "do"},
		KnownSetCodes:   nil,
		// Regenerate with `cardlookup protected-names`.
		ProtectedNames: []string{
			"Back from the Brink",
			"Blast from the Past",
			"Call from the Grave",
			"Drawn from Dreams",
			"Escape from Orthanc",
			"Fall from Favor",
			"Howl from Beyond",
			"Light from Within",
			"Pull from Eternity",
			"Pull from Tomorrow",
			"Rescue from the Underworld",
			"Return from Extinction",
			"Rise from the Grave",
			"Rise from the Tides",
			"Scour from Existence",
			"Strength from the Fallen",
			"Voices from the Void",
		},
		Overrides: map[string]string{},
	}
}

// Overrides resolves a normalized phrase to a canonical card name.
type Overrides interface {
	Lookup(phrase string) (string, bool)
}

// MapOverrides is a static, case-insensitive Overrides.
type MapOverrides map[string]string

// NewMapOverrides copies m with keys folded to override-key form.
func NewMapOverrides(m map[string]string) MapOverrides {
	out := make(MapOverrides, len(m))
	for k, v := range m {
		out[OverrideKey(k)] = v
	}
	return out
}

func (m MapOverrides) Lookup(phrase string) (string, bool) {
	name, ok := m[OverrideKey(phrase)]
	return name, ok
}

// OverrideKey folds a phrase to the form override tables are keyed by.
func OverrideKey(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}
