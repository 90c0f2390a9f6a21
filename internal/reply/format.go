// Package reply renders lookup results as chat messages.
package reply

import (
	"fmt"
	"strings"

	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// maxAlternatives caps how many sets an ambiguous-set reply lists.
const maxAlternatives = 15

// Format returns the user-facing message for a result.
func Format(res lookup.Result) string {
	switch res.Kind {
	case lookup.KindFound:
		if res.Card == nil {
			return "Something went wrong looking up that card."
		}
		return FormatCard(*res.Card)
	case lookup.KindNotFound:
		return fmt.Sprintf("Card not found: %q. Check the spelling or try the full card name.", res.Request.CardName)
	case lookup.KindAmbiguousSet:
		return formatAlternatives(res)
	case lookup.KindInvalidInput:
		return "I couldn't find a card name in that. Try something like \"Sol Ring\" or \"Lightning Bolt from Magic 2010\"."
	case lookup.KindServiceUnavailable:
		return "The card database isn't responding right now. Please try again in a minute."
	default:
		return "Something went wrong looking up that card."
	}
}

// FormatCard renders the rules-relevant fields of a printing.
func FormatCard(card models.Card) string {
	var b strings.Builder

	b.WriteString("**" + card.Name + "**")
	if card.ManaCost != "" {
		b.WriteString(" " + card.ManaCost)
	}
	b.WriteString("\n")

	if card.TypeLine != "" {
		b.WriteString(card.TypeLine + "\n")
	}
	if card.OracleText != "" {
		b.WriteString(card.OracleText + "\n")
	}

	switch {
	case card.Power != "" || card.Toughness != "":
		fmt.Fprintf(&b, "%s/%s\n", card.Power, card.Toughness)
	case card.Loyalty != "":
		fmt.Fprintf(&b, "Loyalty: %s\n", card.Loyalty)
	}

	if card.SetName != "" {
		fmt.Fprintf(&b, "Set: %s (%s)", card.SetName, strings.ToUpper(card.SetCode))
		if card.PriceUSD > 0 {
			fmt.Fprintf(&b, " · $%.2f", card.PriceUSD)
		} else if card.PriceFoilUSD > 0 {
			fmt.Fprintf(&b, " · $%.2f foil", card.PriceFoilUSD)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatAlternatives(res lookup.Result) string {
	var b strings.Builder

	// The set may not exist at all; the message has to cover both cases.
	fmt.Fprintf(&b, "I couldn't find a printing matching %q", res.Request.SetIdentifier)
	if name := res.CanonicalName; name != "" {
		fmt.Fprintf(&b, " for %s", name)
	}
	b.WriteString(".")

	if len(res.Candidates) == 0 {
		return b.String()
	}

	b.WriteString(" Known printings:\n")
	shown := res.Candidates
	if len(shown) > maxAlternatives {
		shown = shown[:maxAlternatives]
	}
	for _, set := range shown {
		fmt.Fprintf(&b, "- %s (%s)\n", set.SetName, strings.ToUpper(set.SetCode))
	}
	if extra := len(res.Candidates) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "…and %d more\n", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}
