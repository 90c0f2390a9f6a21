package lookup

import (
	"context"
	"sort"
	"strings"

	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// Disambiguate pins an already resolved card to the printing named by
// req.SetIdentifier. It issues one printings lookup.
func (r *Resolver) Disambiguate(ctx context.Context, req LookupRequest, card models.Card) Result {
	set := r.normalizer.Normalize(req.SetIdentifier)
	if set == "" {
		return found(req, card)
	}
	return r.disambiguate(ctx, req, set, card)
}

func (r *Resolver) disambiguate(ctx context.Context, req LookupRequest, set string, card models.Card) Result {
	printings, err := r.catalog.CardPrintings(ctx, card.Name)
	if err != nil {
		return unavailable(req, err)
	}
	if len(printings) == 0 {
		printings = []models.Card{card}
	}

	// An unknown set and a set this card was never printed in look the same here.
	matches := MatchPrintings(printings, set)
	if len(matches) == 0 {
		return ambiguousSet(req, card.Name, KnownSets(printings))
	}
	return found(req, PreferredPrinting(matches))
}

// MatchPrintings returns the printings matching a set identifier. An exact
// set code beats an exact set name, which beats a substring of the set name.
func MatchPrintings(printings []models.Card, identifier string) []models.Card {
	q := setQuery(identifier)
	if q == "" {
		return nil
	}

	var byCode, byName, bySubstring []models.Card
	for _, p := range printings {
		code := strings.ToLower(p.SetCode)
		name := strings.ToLower(p.SetName)
		switch {
		case code == q:
			byCode = append(byCode, p)
		case name == q:
			byName = append(byName, p)
		case name != "" && strings.Contains(name, q):
			bySubstring = append(bySubstring, p)
		}
	}

	switch {
	case len(byCode) > 0:
		return byCode
	case len(byName) > 0:
		return byName
	default:
		return bySubstring
	}
}

// PreferredPrinting picks the newest printing that has a price, falling back
// to the newest printing when none are priced. printings must be non-empty.
func PreferredPrinting(printings []models.Card) models.Card {
	best := printings[0]
	for _, p := range printings[1:] {
		if p.HasPrice() != best.HasPrice() {
			if p.HasPrice() {
				best = p
			}
			continue
		}
		if p.ReleasedAt > best.ReleasedAt {
			best = p
		}
	}
	return best
}

// KnownSets lists each set a card was printed in once, newest first.
func KnownSets(printings []models.Card) []models.SetRef {
	seen := make(map[string]bool, len(printings))
	sets := make([]models.SetRef, 0, len(printings))
	for _, p := range printings {
		code := strings.ToLower(p.SetCode)
		if seen[code] {
			continue
		}
		seen[code] = true
		sets = append(sets, models.SetRef{
			SetCode:    p.SetCode,
			SetName:    p.SetName,
			ReleasedAt: p.ReleasedAt,
		})
	}

	// Release dates are "2022-02-18", so string order is date order.
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].ReleasedAt > sets[j].ReleasedAt
	})
	return sets
}

// setQuery folds a user set phrase: "the Edge of Eternities set" -> "edge of eternities".
func setQuery(identifier string) string {
	q := strings.ToLower(collapse(identifier))
	q = strings.TrimPrefix(q, "the ")
	q = strings.TrimSuffix(q, " set")
	return strings.TrimSpace(q)
}
