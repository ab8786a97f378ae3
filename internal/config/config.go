package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"SNAX_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"SNAX_DB_MAX_CONNS" default:"8"`

	SlackClientID      string `envconfig:"SLACK_CLIENT_ID" default:""`
	SlackClientSecret  string `envconfig:"SLACK_CLIENT_SECRET" default:""`
	SlackSigningSecret string `envconfig:"SLACK_SIGNING_SECRET" default:""`

	SearchEngines         string `envconfig:"SEARCH_ENGINES" default:"shipt,boxed,sams-club"`
	SearchCacheTTLSeconds int    `envconfig:"SEARCH_CACHE_TTL_SECONDS" default:"36000"`
	SearchCacheMaxEntries int    `envconfig:"SEARCH_CACHE_MAX_ENTRIES" default:"1024"`

	MinNameSimilarity        float64 `envconfig:"MIN_NAME_SIMILARITY" default:"0.65"`
	MinDescriptionSimilarity float64 `envconfig:"MIN_DESCRIPTION_SIMILARITY" default:"0.2"`
	BrandBoostMultiplier     float64 `envconfig:"BRAND_BOOST_MULTIPLIER" default:"1.25"`
	NearDuplicateThreshold   float64 `envconfig:"NEAR_DUPLICATE_THRESHOLD" default:"0.8"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("SNAX_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("SNAX_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("SNAX_DB_MIN_CONNS (%d) cannot exceed SNAX_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if len(c.SearchEngineList()) == 0 {
		return fmt.Errorf("SEARCH_ENGINES must name at least one engine")
	}
	if c.SearchCacheTTLSeconds < 1 {
		return fmt.Errorf("SEARCH_CACHE_TTL_SECONDS must be >= 1")
	}
	if c.SearchCacheMaxEntries < 1 {
		return fmt.Errorf("SEARCH_CACHE_MAX_ENTRIES must be >= 1")
	}
	for name, value := range map[string]float64{
		"MIN_NAME_SIMILARITY":        c.MinNameSimilarity,
		"MIN_DESCRIPTION_SIMILARITY": c.MinDescriptionSimilarity,
		"NEAR_DUPLICATE_THRESHOLD":   c.NearDuplicateThreshold,
	} {
		if value <= 0 || value > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, value)
		}
	}
	if c.BrandBoostMultiplier < 1 {
		return fmt.Errorf("BRAND_BOOST_MULTIPLIER must be >= 1, got %v", c.BrandBoostMultiplier)
	}
	return nil
}

// SearchEngineList returns the configured engine names, trimmed, lowercased,
// and deduplicated, preserving configuration order.
func (c *Config) SearchEngineList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.SearchEngines, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
