package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	DBPath             string        `env:"DB_PATH" envDefault:"./rules_bot.db"`
	PolicyFile         string        `env:"LOOKUP_POLICY_FILE"`
	ScryfallBaseURL    string        `env:"SCRYFALL_BASE_URL" envDefault:"https://api.scryfall.com"`
	ScryfallRateLimit  float64       `env:"SCRYFALL_RATE_LIMIT" envDefault:"10"`
	ScryfallUserAgent  string        `env:"SCRYFALL_USER_AGENT" envDefault:"mtg-rules-bot/1.0"`
	CatalogCacheSize   int           `env:"CATALOG_CACHE_SIZE" envDefault:"500"`
	CatalogCacheTTL    time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1h"`
	LookupTimeout      time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"15s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LookupTimeout <= 0 {
		return nil, fmt.Errorf("LOOKUP_TIMEOUT must be positive, got %s", cfg.LookupTimeout)
	}
	return &cfg, nil
}
