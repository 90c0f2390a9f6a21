package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
)

// protectedNamesQuery finds every card whose name has "from" as a word.
const protectedNamesQuery = `name:" from "`

var protectedNamesFile string

var protectedNamesBlock = regexp.MustCompile(`(?ms)^protected_names\s*=\s*\[.*?\][ \t]*$`)

var protectedNamesCmd = &cobra.Command{
	Use:   "protected-names",
	Short: "Rebuild the list of card names the parser must not split at \"from\"",
	Long: `protected-names searches Scryfall for every card whose name contains "from"
and prints a protected_names entry for the lookup policy. Names already in the
current policy are kept.

  cardlookup protected-names
  cardlookup protected-names --write configs/lookup_policy.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, err := loadSettings()
		if err != nil {
			return err
		}

		// Paging through the whole result set takes several paced requests.
		ctx, cancel := context.WithTimeout(cmd.Context(), 4*cfg.LookupTimeout)
		defer cancel()

		result, err := newCatalog(cfg).SearchAllCards(ctx, protectedNamesQuery)
		if err != nil {
			return fmt.Errorf("search scryfall: %w", err)
		}
		if result.HasMore {
			return fmt.Errorf("search scryfall: results truncated at %d of %d cards", len(result.Cards), result.TotalCount)
		}

		names := make([]string, 0, len(result.Cards)+len(policy.ProtectedNames))
		for _, card := range result.Cards {
			names = append(names, card.Name)
		}
		names = lookup.ProtectedNameCandidates(append(names, policy.ProtectedNames...))

		if protectedNamesFile != "" {
			if err := writeProtectedNames(protectedNamesFile, names); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d protected names to %s\n", len(names), protectedNamesFile)
			return nil
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), names)
		}
		return encodeProtectedNames(cmd.OutOrStdout(), names)
	},
}

func encodeProtectedNames(w io.Writer, names []string) error {
	var b strings.Builder
	b.WriteString("protected_names = [\n")
	for _, name := range names {
		// TOML basic strings share JSON's escaping for quotes and backslashes.
		fmt.Fprintf(&b, "  %q,\n", name)
	}
	b.WriteString("]\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// writeProtectedNames replaces the protected_names array in a policy file,
// leaving the rest of the file and its comments untouched. A missing file is
// created.
func writeProtectedNames(path string, names []string) error {
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read policy file: %w", err)
	}

	var block strings.Builder
	if err := encodeProtectedNames(&block, names); err != nil {
		return err
	}
	entry := strings.TrimRight(block.String(), "\n")

	content := string(raw)
	if protectedNamesBlock.MatchString(content) {
		content = protectedNamesBlock.ReplaceAllLiteralString(content, entry)
	} else {
		// Top-level keys must precede the first table header.
		content = entry + "\n\n" + content
	}

	var check lookup.Policy
	if _, err := toml.Decode(content, &check); err != nil {
		return fmt.Errorf("rewritten policy file is not valid TOML: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write policy file: %w", err)
	}
	return nil
}
