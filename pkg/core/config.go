package core

import "time"

// LintConfig holds lint rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any

// LinksConfig configures the link checker.
type LinksConfig struct {
	Timeout     time.Duration `koanf:"timeout"`
	Concurrency int           `koanf:"concurrency"`
	RatePerHost float64       `koanf:"rate_per_host"` // requests per second
	Retries     int           `koanf:"retries"`
	UserAgent   string        `koanf:"user_agent"`
}

// DefaultLinksConfig returns the link checker defaults.
func DefaultLinksConfig() LinksConfig {
	return LinksConfig{
		Timeout:     10 * time.Second,
		Concurrency: 4,
		RatePerHost: 2,
		Retries:     3,
		UserAgent:   "railcat-linkcheck/1",
	}
}

// ServeConfig configures the read-only HTTP view.
type ServeConfig struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}
