package models

// Card is a single printing of a Magic card as reported by the catalog.
// Name is always the catalog's canonical name, never the user's input.
type Card struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	SetName         string   `json:"set_name"`
	SetCode         string   `json:"set_code"`
	CollectorNumber string   `json:"collector_number"`
	Rarity          string   `json:"rarity"`
	OracleText      string   `json:"oracle_text"`
	TypeLine        string   `json:"type_line"`
	ManaCost        string   `json:"mana_cost,omitempty"`
	Power           string   `json:"power,omitempty"`
	Toughness       string   `json:"toughness,omitempty"`
	Loyalty         string   `json:"loyalty,omitempty"`
	PriceUSD        float64  `json:"price_usd"`
	PriceFoilUSD    float64  `json:"price_foil_usd"`
	ImageURL        string   `json:"image_url,omitempty"`
	ReleasedAt      string   `json:"released_at"` // "2006-01-02"
	Finishes        []string `json:"finishes,omitempty"`
}

// HasPrice reports whether the catalog returned a non-foil or foil USD price.
func (c Card) HasPrice() bool {
	return c.PriceUSD > 0 || c.PriceFoilUSD > 0
}

type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
}

// SetRef identifies a release set by code and display name.
type SetRef struct {
	SetCode    string `json:"set_code"`
	SetName    string `json:"set_name"`
	ReleasedAt string `json:"released_at,omitempty"`
}
