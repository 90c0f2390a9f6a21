package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codyseavey/mtg-rules-bot/internal/config"
	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
	"github.com/codyseavey/mtg-rules-bot/internal/reply"
	"github.com/codyseavey/mtg-rules-bot/internal/services"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardlookup",
	Short: "Resolve Magic card names the way the rules bot does",
	Long: `cardlookup runs the rules bot's card-name resolution from the command line.
It parses a free-text command, cleans the card name, looks it up on Scryfall
(exact, then fuzzy) and pins it to a set when one is given.

Scryfall settings come from the same environment variables as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	policyFile string
	jsonOutput bool
)

func init() {
	RootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "path to a TOML lookup policy (defaults to $LOOKUP_POLICY_FILE)")
	RootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of a formatted reply")

	RootCmd.AddCommand(resolveCmd)
	RootCmd.AddCommand(parseCmd)
	RootCmd.AddCommand(searchCmd)

	protectedNamesCmd.Flags().StringVar(&protectedNamesFile, "write", "", "rewrite protected_names in this policy file instead of printing")
	RootCmd.AddCommand(protectedNamesCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <command text>",
	Short: "Resolve a card name, optionally with a set",
	Long: `Resolve parses and resolves a command such as:

  cardlookup resolve "how does commanders plate work"
  cardlookup resolve Sol Ring from edge of eternities
  cardlookup resolve Lightning Bolt m21`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, err := loadSettings()
		if err != nil {
			return err
		}
		resolver := lookup.NewResolver(newCatalog(cfg), policy, nil)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LookupTimeout)
		defer cancel()

		res := resolver.Resolve(ctx, strings.Join(args, " "))
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		printResult(cmd.OutOrStdout(), res)
		if res.Kind == lookup.KindServiceUnavailable {
			return fmt.Errorf("catalog unavailable: %w", res.Err)
		}
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <command text>",
	Short: "Show how a command splits into card name and set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, policy, err := loadSettings()
		if err != nil {
			return err
		}
		parser := lookup.NewParser(policy)
		normalizer := lookup.NewNormalizer(policy)

		req := parser.Parse(strings.Join(args, " "))
		key := normalizer.Normalize(req.CardName)
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"request": req, "lookup_key": key})
		}

		out := cmd.OutOrStdout()
		label := color.New(color.FgCyan).SprintFunc()
		fmt.Fprintf(out, "%s %s\n", label("card name: "), req.CardName)
		fmt.Fprintf(out, "%s %s\n", label("lookup key:"), key)
		set := req.SetIdentifier
		if set == "" {
			set = "(none)"
		}
		fmt.Fprintf(out, "%s %s\n", label("set:       "), set)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <scryfall query>",
	Short: "Run a Scryfall full-text search",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadSettings()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LookupTimeout)
		defer cancel()

		result, err := newCatalog(cfg).SearchCards(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), result)
		}

		out := cmd.OutOrStdout()
		for _, card := range result.Cards {
			fmt.Fprintf(out, "%s  %s (%s)\n", color.New(color.Bold).Sprint(card.Name), card.SetName, strings.ToUpper(card.SetCode))
		}
		more := ""
		if result.HasMore {
			more = ", more available"
		}
		fmt.Fprintf(out, "%d of %d cards%s\n", len(result.Cards), result.TotalCount, more)
		return nil
	},
}

func loadSettings() (*config.Config, lookup.Policy, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, lookup.Policy{}, err
	}
	path := policyFile
	if path == "" {
		path = cfg.PolicyFile
	}
	policy, err := config.LoadPolicy(path)
	if err != nil {
		return nil, lookup.Policy{}, err
	}
	return cfg, policy, nil
}

func newCatalog(cfg *config.Config) *services.ScryfallService {
	return services.NewScryfallService(
		services.WithBaseURL(cfg.ScryfallBaseURL),
		services.WithRateLimit(cfg.ScryfallRateLimit),
		services.WithUserAgent(cfg.ScryfallUserAgent),
	)
}

func printResult(w io.Writer, res lookup.Result) {
	var c *color.Color
	switch res.Kind {
	case lookup.KindFound:
		c = color.New(color.FgGreen)
	case lookup.KindAmbiguousSet:
		c = color.New(color.FgYellow)
	case lookup.KindServiceUnavailable:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgRed)
	}
	fmt.Fprintln(w, c.Sprintf("[%s]", res.Kind))
	fmt.Fprintln(w, reply.Format(res))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
