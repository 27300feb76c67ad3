// Package config provides configuration management for the railcat CLI.
//
// The shared configuration sections (LintConfig, LinksConfig, ServeConfig)
// are defined in pkg/core and re-exported here via type aliases.
package config

import (
	"github.com/tc-opendata/railcat/pkg/core"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = core.LintConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = core.RuleOptions

// LinksConfig is an alias for the shared link checker configuration.
type LinksConfig = core.LinksConfig

// ServeConfig is an alias for the shared HTTP view configuration.
type ServeConfig = core.ServeConfig

// Config holds all CLI configuration options.
type Config struct {
	CatalogPath  string       `koanf:"catalog_path"` // empty means the embedded catalog
	StatePath    string       `koanf:"state_path"`
	ReadmePath   string       `koanf:"readme_path"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	Lint         *LintConfig  `koanf:"lint"`
	Links        *LinksConfig `koanf:"links"`
	Serve        *ServeConfig `koanf:"serve"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultCatalogFile = "catalog.yaml"
	DefaultStateFile   = ".railcat/state.db"
	DefaultReadmeFile  = "README.md"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServeAddr   = "127.0.0.1:8080"
)

// GetLinksConfig returns the link checker config with defaults applied for
// any unset values.
func (c *Config) GetLinksConfig() LinksConfig {
	defaults := core.DefaultLinksConfig()
	if c.Links == nil {
		return defaults
	}
	links := *c.Links
	if links.Timeout <= 0 {
		links.Timeout = defaults.Timeout
	}
	if links.Concurrency <= 0 {
		links.Concurrency = defaults.Concurrency
	}
	if links.RatePerHost <= 0 {
		links.RatePerHost = defaults.RatePerHost
	}
	if links.UserAgent == "" {
		links.UserAgent = defaults.UserAgent
	}
	return links
}

// GetServeConfig returns the HTTP view config with defaults applied.
func (c *Config) GetServeConfig() ServeConfig {
	if c.Serve == nil {
		return ServeConfig{Addr: DefaultServeAddr}
	}
	serve := *c.Serve
	if serve.Addr == "" {
		serve.Addr = DefaultServeAddr
	}
	return serve
}
