// Package lookup turns free-text card questions into a single catalog card.
//
// The flow is parse, normalize, resolve (exact then fuzzy) and, when the
// command named a set, disambiguate against the card's printings. Every
// outcome, including catalog failure, is reported as a Result; nothing here
// panics or retries.
package lookup

import (
	"context"
	"log"
	"time"

	"github.com/codyseavey/mtg-rules-bot/internal/metrics"
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// Catalog is the card database the resolver reads from. Lookups return
// nil, nil when the catalog has no match and an error only when the catalog
// could not answer.
type Catalog interface {
	ExactCard(ctx context.Context, name string) (*models.Card, error)
	FuzzyCard(ctx context.Context, name string) (*models.Card, error)
	CardPrintings(ctx context.Context, name string) ([]models.Card, error)
}

// Resolver holds no per-request state and is safe for concurrent use as long
// as its Catalog and Overrides are.
type Resolver struct {
	catalog    Catalog
	parser     *Parser
	normalizer *Normalizer
	overrides  Overrides
}

// NewResolver builds a resolver. A nil overrides falls back to the policy's
// static override map.
func NewResolver(catalog Catalog, policy Policy, overrides Overrides) *Resolver {
	if overrides == nil {
		overrides = NewMapOverrides(policy.Overrides)
	}
	return &Resolver{
		catalog:    catalog,
		parser:     NewParser(policy),
		normalizer: NewNormalizer(policy),
		overrides:  overrides,
	}
}

// Parse exposes the intermediate form of a command.
func (r *Resolver) Parse(raw string) LookupRequest {
	return r.parser.Parse(raw)
}

// Normalize exposes the lookup key the resolver would use for a name.
func (r *Resolver) Normalize(name string) string {
	return r.normalizer.Normalize(name)
}

// Resolve parses raw command text and resolves it to exactly one Result.
func (r *Resolver) Resolve(ctx context.Context, raw string) Result {
	return r.ResolveRequest(ctx, r.parser.Parse(raw))
}

func (r *Resolver) ResolveRequest(ctx context.Context, req LookupRequest) Result {
	start := time.Now()
	res := r.resolve(ctx, req)
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	metrics.ResolutionsTotal.WithLabelValues(string(res.Kind)).Inc()
	if res.Kind == KindServiceUnavailable {
		log.Printf("[Resolver] catalog unavailable for %q: %v", req.RawText, res.Err)
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, req LookupRequest) Result {
	key := r.normalizer.Normalize(req.CardName)
	if key == "" {
		return invalidInput(req)
	}

	card, res, ok := r.resolveName(ctx, req, key)
	if !ok {
		res.LookupKey = key
		return res
	}

	if set := r.normalizer.Normalize(req.SetIdentifier); set != "" {
		res = r.disambiguate(ctx, req, set, *card)
	} else {
		res = found(req, *card)
	}
	res.LookupKey = key
	return res
}

// resolveName tries the exact lookup and then the fuzzy lookup, issuing at
// most two catalog calls. ok is false when res is terminal.
func (r *Resolver) resolveName(ctx context.Context, req LookupRequest, key string) (*models.Card, Result, bool) {
	name, stage := key, "exact"
	if override, hit := r.overrides.Lookup(key); hit && override != "" {
		name, stage = override, "override"
	}

	card, err := r.catalog.ExactCard(ctx, name)
	if err != nil {
		return nil, unavailable(req, err), false
	}
	if card != nil {
		metrics.ResolutionStage.WithLabelValues(stage).Inc()
		return card, Result{}, true
	}

	card, err = r.catalog.FuzzyCard(ctx, name)
	if err != nil {
		return nil, unavailable(req, err), false
	}
	if card == nil {
		return nil, notFound(req), false
	}
	metrics.ResolutionStage.WithLabelValues("fuzzy").Inc()
	return card, Result{}, true
}
