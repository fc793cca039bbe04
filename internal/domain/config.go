package domain

import (
	"fmt"
	"time"
)

// Config mirrors ~/.hactl/config.yaml.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	Hub                 HubSettings     `yaml:"hub"`
	Cache               CacheSettings   `yaml:"cache"`
	Matcher             MatcherSettings `yaml:"matcher"`
	Context             ContextSettings `yaml:"context"`
	Output              OutputSettings  `yaml:"output"`
}

// HubSettings points at the Home Assistant server.
type HubSettings struct {
	Server         string `yaml:"server"`
	TokenEnvVar    string `yaml:"token_env_var"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// CacheSettings governs the registry cache TTLs. Entity state drifts fast,
// the rest of the registry is near static.
type CacheSettings struct {
	EntitiesTTL string `yaml:"entities_ttl"`
	RegistryTTL string `yaml:"registry_ttl"`
}

// MatcherSettings exposes the fuzzy scoring policy knobs. The acceptance
// threshold is configuration, not a constant buried in the matcher.
type MatcherSettings struct {
	Threshold      float64 `yaml:"threshold"`
	MaxSuggestions int     `yaml:"max_suggestions"`
}

// ContextSettings governs the follow-up command window.
type ContextSettings struct {
	TTL string `yaml:"ttl"`
}

// OutputSettings holds render preferences.
type OutputSettings struct {
	Format string `yaml:"format"`
	Color  string `yaml:"color"`
}

// Timeout returns the hub request timeout.
func (c Config) Timeout() time.Duration {
	if c.Hub.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Hub.TimeoutSeconds) * time.Second
}

// CategoryTTL returns the configured TTL for one registry category.
func (c Config) CategoryTTL(cat Category) time.Duration {
	if cat == CategoryEntities {
		return parseDurationOr(c.Cache.EntitiesTTL, 5*time.Minute)
	}
	return parseDurationOr(c.Cache.RegistryTTL, time.Hour)
}

// ContextTTL returns the follow-up window duration.
func (c Config) ContextTTL() time.Duration {
	return parseDurationOr(c.Context.TTL, DefaultContextTTL)
}

// Validate reports configuration problems that make the client unusable.
func (c Config) Validate() error {
	if c.Hub.Server == "" {
		return fmt.Errorf("no hub server configured; set hub.server or HACTL_SERVER")
	}
	if c.Matcher.Threshold < 0 || c.Matcher.Threshold >= 1 {
		return fmt.Errorf("matcher.threshold must be in [0,1), got %v", c.Matcher.Threshold)
	}
	return nil
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}
