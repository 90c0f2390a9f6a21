package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
)

// LoadPolicy reads a lookup policy from a TOML file. Lists present in the
// file replace the built-in ones; lists left out keep their defaults.
// An empty path returns lookup.DefaultPolicy().
func LoadPolicy(path string) (lookup.Policy, error) {
	policy := lookup.DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	if _, err := os.Stat(path); err != nil {
		return policy, fmt.Errorf("policy file: %w", err)
	}

	var file lookup.Policy
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return policy, fmt.Errorf("error decoding policy file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return policy, fmt.Errorf("unknown keys in policy file: %v", undecoded)
	}

	if md.IsDefined("filler_phrases") {
		policy.FillerPhrases = file.FillerPhrases
	}
	if md.IsDefined("trailing_fillers") {
		policy.TrailingFillers = file.TrailingFillers
	}
	if md.IsDefined("known_set_codes") {
		policy.KnownSetCodes = file.KnownSetCodes
	}
	if md.IsDefined("protected_names") {
		policy.ProtectedNames = file.ProtectedNames
	}
	for alias, name := range file.Overrides {
		policy.Overrides[alias] = name
	}
	return policy, nil
}
