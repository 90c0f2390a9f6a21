package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/mtg-rules-bot/internal/metrics"
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

const (
	scryfallBaseURL        = "https://api.scryfall.com"
	scryfallDefaultTimeout = 10 * time.Second
	// Scryfall asks clients to stay under 10 requests per second.
	scryfallDefaultRate = 10
	scryfallUserAgent   = "mtg-rules-bot/1.0"
	// Scryfall pages hold 175 cards; basic lands run to several pages.
	scryfallMaxPages = 20
)

// ErrCatalogUnavailable marks failures where Scryfall could not answer at all,
// as opposed to answering "no such card".
var ErrCatalogUnavailable = errors.New("card catalog unavailable")

type ScryfallService struct {
	client    *http.Client
	baseURL   string
	limiter   *rate.Limiter
	userAgent string
}

type ScryfallOption func(*ScryfallService)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(baseURL string) ScryfallOption {
	return func(s *ScryfallService) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimit sets the sustained requests per second. Zero or less disables pacing.
func WithRateLimit(perSecond float64) ScryfallOption {
	return func(s *ScryfallService) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithHTTPClient(client *http.Client) ScryfallOption {
	return func(s *ScryfallService) {
		s.client = client
	}
}

func WithUserAgent(userAgent string) ScryfallOption {
	return func(s *ScryfallService) {
		if userAgent != "" {
			s.userAgent = userAgent
		}
	}
}

func NewScryfallService(opts ...ScryfallOption) *ScryfallService {
	s := &ScryfallService{
		client: &http.Client{
			Timeout: scryfallDefaultTimeout,
		},
		baseURL:   scryfallBaseURL,
		limiter:   rate.NewLimiter(rate.Limit(scryfallDefaultRate), 1),
		userAgent: scryfallUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scryfallSearchResponse struct {
	Data       []scryfallCard `json:"data"`
	Object     string         `json:"object"`
	TotalCards int            `json:"total_cards"`
	HasMore    bool           `json:"has_more"`
	NextPage   string         `json:"next_page"`
}

type scryfallCard struct {
	ImageURIs    *scryfallImages `json:"image_uris"`
	CardFaces    []scryfallFace  `json:"card_faces"`
	Prices       scryfallPrices  `json:"prices"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SetName      string          `json:"set_name"`
	Set          string          `json:"set"`
	CollectorNum string          `json:"collector_number"`
	Rarity       string          `json:"rarity"`
	OracleText   string          `json:"oracle_text"`
	TypeLine     string          `json:"type_line"`
	ManaCost     string          `json:"mana_cost"`
	Power        string          `json:"power"`
	Toughness    string          `json:"toughness"`
	Loyalty      string          `json:"loyalty"`
	Finishes     []string        `json:"finishes"`
	ReleasedAt   string          `json:"released_at"`
}

type scryfallImages struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

type scryfallFace struct {
	ImageURIs  *scryfallImages `json:"image_uris"`
	Name       string          `json:"name"`
	ManaCost   string          `json:"mana_cost"`
	TypeLine   string          `json:"type_line"`
	OracleText string          `json:"oracle_text"`
	Power      string          `json:"power"`
	Toughness  string          `json:"toughness"`
	Loyalty    string          `json:"loyalty"`
}

type scryfallPrices struct {
	USD     string `json:"usd"`
	USDFoil string `json:"usd_foil"`
}

// ExactCard looks a card up by its exact name (case-insensitive).
// Returns nil, nil if Scryfall has no card by that name.
func (s *ScryfallService) ExactCard(ctx context.Context, name string) (*models.Card, error) {
	return s.namedCard(ctx, "named_exact", url.Values{"exact": {name}})
}

// FuzzyCard asks Scryfall for its best guess at a misspelled or partial name.
// Returns nil, nil when nothing matches or the name is ambiguous.
func (s *ScryfallService) FuzzyCard(ctx context.Context, name string) (*models.Card, error) {
	return s.namedCard(ctx, "named_fuzzy", url.Values{"fuzzy": {name}})
}

func (s *ScryfallService) namedCard(ctx context.Context, endpoint string, params url.Values) (*models.Card, error) {
	reqURL := fmt.Sprintf("%s/cards/named?%s", s.baseURL, params.Encode())

	var sc scryfallCard
	ok, err := s.getJSON(ctx, endpoint, reqURL, &sc)
	if err != nil || !ok {
		return nil, err
	}

	card := s.convertToCard(sc)
	return &card, nil
}

// SearchCards runs a full-text Scryfall query and returns the first page.
func (s *ScryfallService) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	params := url.Values{"q": {query}}
	return s.search(ctx, "search", params, 1)
}

// SearchAllCards runs a full-text query and follows next_page until the
// results are exhausted or the page cap is reached. HasMore is still true
// when the cap cut the results short.
func (s *ScryfallService) SearchAllCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	params := url.Values{"q": {query}}
	return s.search(ctx, "search", params, scryfallMaxPages)
}

// CardPrintings lists every printing of a card by exact name, newest first.
func (s *ScryfallService) CardPrintings(ctx context.Context, name string) ([]models.Card, error) {
	// Escape quotes for Scryfall query syntax.
	safeName := strings.ReplaceAll(name, "\"", "\\\"")
	params := url.Values{
		"q":      {fmt.Sprintf(`!"%s"`, safeName)},
		"unique": {"prints"},
		"order":  {"released"},
		"dir":    {"desc"},
	}
	result, err := s.search(ctx, "printings", params, scryfallMaxPages)
	if err != nil {
		return nil, err
	}
	if result.HasMore {
		log.Printf("[Scryfall] printings of %q truncated at %d of %d", name, len(result.Cards), result.TotalCount)
	}
	return result.Cards, nil
}

// search reads up to maxPages pages of a /cards/search query. Each page is
// a separate paced request under ctx.
func (s *ScryfallService) search(ctx context.Context, endpoint string, params url.Values, maxPages int) (*models.CardSearchResult, error) {
	result := &models.CardSearchResult{Cards: []models.Card{}}
	reqURL := fmt.Sprintf("%s/cards/search?%s", s.baseURL, params.Encode())

	for page := 0; page < maxPages && reqURL != ""; page++ {
		var searchResp scryfallSearchResponse
		ok, err := s.getJSON(ctx, endpoint, reqURL, &searchResp)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		for _, sc := range searchResp.Data {
			result.Cards = append(result.Cards, s.convertToCard(sc))
		}
		result.TotalCount = searchResp.TotalCards
		result.HasMore = searchResp.HasMore

		reqURL = ""
		if searchResp.HasMore {
			reqURL = searchResp.NextPage
		}
	}

	return result, nil
}

// getJSON performs one paced GET and decodes a 200 body into out.
// It reports false with a nil error on 404.
func (s *ScryfallService) getJSON(ctx context.Context, endpoint, reqURL string, out any) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.CatalogLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := s.limiter.Wait(ctx); err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("%w: rate limiter: %v", ErrCatalogUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "not_found").Inc()
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("%w: scryfall API returned status %d", ErrCatalogUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("%w: failed to decode scryfall response: %v", ErrCatalogUnavailable, err)
	}
	metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return true, nil
}

func (s *ScryfallService) convertToCard(sc scryfallCard) models.Card {
	var imageURL string
	if sc.ImageURIs != nil {
		imageURL = sc.ImageURIs.Normal
	} else if len(sc.CardFaces) > 0 && sc.CardFaces[0].ImageURIs != nil {
		imageURL = sc.CardFaces[0].ImageURIs.Normal
	}

	var priceUSD, priceFoilUSD float64
	if sc.Prices.USD != "" {
		_, _ = fmt.Sscanf(sc.Prices.USD, "%f", &priceUSD)
	}
	if sc.Prices.USDFoil != "" {
		_, _ = fmt.Sscanf(sc.Prices.USDFoil, "%f", &priceFoilUSD)
	}

	card := models.Card{
		ID:              sc.ID,
		Name:            sc.Name,
		SetName:         sc.SetName,
		SetCode:         sc.Set,
		CollectorNumber: sc.CollectorNum,
		Rarity:          sc.Rarity,
		OracleText:      sc.OracleText,
		TypeLine:        sc.TypeLine,
		ManaCost:        sc.ManaCost,
		Power:           sc.Power,
		Toughness:       sc.Toughness,
		Loyalty:         sc.Loyalty,
		PriceUSD:        priceUSD,
		PriceFoilUSD:    priceFoilUSD,
		ImageURL:        imageURL,
		ReleasedAt:      sc.ReleasedAt,
		Finishes:        sc.Finishes,
	}

	// Split, flip and transform cards keep their rules text on the faces.
	if len(sc.CardFaces) > 0 && card.OracleText == "" {
		var texts, costs []string
		for _, f := range sc.CardFaces {
			texts = append(texts, f.OracleText)
			if f.ManaCost != "" {
				costs = append(costs, f.ManaCost)
			}
		}
		card.OracleText = strings.Join(texts, "\n//\n")
		if card.ManaCost == "" {
			card.ManaCost = strings.Join(costs, " // ")
		}
		if card.TypeLine == "" {
			card.TypeLine = sc.CardFaces[0].TypeLine
		}
		front := sc.CardFaces[0]
		if card.Power == "" && card.Toughness == "" {
			card.Power, card.Toughness = front.Power, front.Toughness
		}
		if card.Loyalty == "" {
			card.Loyalty = front.Loyalty
		}
	}

	return card
}
