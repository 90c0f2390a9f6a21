package services

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/codyseavey/mtg-rules-bot/internal/metrics"
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// CardCatalog is the full set of catalog operations the bot uses.
type CardCatalog interface {
	ExactCard(ctx context.Context, name string) (*models.Card, error)
	FuzzyCard(ctx context.Context, name string) (*models.Card, error)
	CardPrintings(ctx context.Context, name string) ([]models.Card, error)
	SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error)
}

// CachedCatalog keeps recent positive answers from another catalog in
// expiring LRU caches. Misses and errors always go through to the inner
// catalog so a card added upstream is visible on the next request.
type CachedCatalog struct {
	inner     CardCatalog
	exact     *expirable.LRU[string, models.Card]
	fuzzy     *expirable.LRU[string, models.Card]
	printings *expirable.LRU[string, []models.Card]
}

func NewCachedCatalog(inner CardCatalog, size int, ttl time.Duration) *CachedCatalog {
	if size <= 0 {
		size = 500
	}
	return &CachedCatalog{
		inner:     inner,
		exact:     expirable.NewLRU[string, models.Card](size, nil, ttl),
		fuzzy:     expirable.NewLRU[string, models.Card](size, nil, ttl),
		printings: expirable.NewLRU[string, []models.Card](size, nil, ttl),
	}
}

func (c *CachedCatalog) ExactCard(ctx context.Context, name string) (*models.Card, error) {
	return c.cachedCard(ctx, "named_exact", c.exact, name, c.inner.ExactCard)
}

func (c *CachedCatalog) FuzzyCard(ctx context.Context, name string) (*models.Card, error) {
	return c.cachedCard(ctx, "named_fuzzy", c.fuzzy, name, c.inner.FuzzyCard)
}

func (c *CachedCatalog) cachedCard(
	ctx context.Context,
	endpoint string,
	cache *expirable.LRU[string, models.Card],
	name string,
	fetch func(context.Context, string) (*models.Card, error),
) (*models.Card, error) {
	key := cacheKey(name)
	if card, ok := cache.Get(key); ok {
		metrics.CatalogCacheHits.WithLabelValues(endpoint).Inc()
		return &card, nil
	}
	metrics.CatalogCacheMisses.WithLabelValues(endpoint).Inc()

	card, err := fetch(ctx, name)
	if err != nil || card == nil {
		return card, err
	}
	cache.Add(key, *card)
	return card, nil
}

func (c *CachedCatalog) CardPrintings(ctx context.Context, name string) ([]models.Card, error) {
	key := cacheKey(name)
	if printings, ok := c.printings.Get(key); ok {
		metrics.CatalogCacheHits.WithLabelValues("printings").Inc()
		return append([]models.Card(nil), printings...), nil
	}
	metrics.CatalogCacheMisses.WithLabelValues("printings").Inc()

	printings, err := c.inner.CardPrintings(ctx, name)
	if err != nil || len(printings) == 0 {
		return printings, err
	}
	c.printings.Add(key, append([]models.Card(nil), printings...))
	return printings, nil
}

// SearchCards is not cached; search queries rarely repeat.
func (c *CachedCatalog) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	return c.inner.SearchCards(ctx, query)
}

// Len reports how many entries are cached across all lookups.
func (c *CachedCatalog) Len() int {
	return c.exact.Len() + c.fuzzy.Len() + c.printings.Len()
}

func cacheKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
