package config

import (
	"fmt"
	"strings"

	"github.com/tc-opendata/railcat/pkg/core"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}

	if c.OutputFormat != "" && !contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q\nHint: use one of %s", c.OutputFormat, strings.Join(validOutputs, ", "))
	}

	if c.Lint != nil {
		for id, sev := range c.Lint.Severity {
			if _, ok := core.ParseSeverity(sev); !ok {
				return fmt.Errorf("lint.severity.%s: invalid severity %q (expected error, warning, info or hint)", id, sev)
			}
		}
	}

	if c.Links != nil {
		switch {
		case c.Links.Timeout < 0:
			return fmt.Errorf("links.timeout must not be negative")
		case c.Links.Concurrency < 0:
			return fmt.Errorf("links.concurrency must not be negative")
		case c.Links.RatePerHost < 0:
			return fmt.Errorf("links.rate_per_host must not be negative")
		case c.Links.Retries < 0:
			return fmt.Errorf("links.retries must not be negative")
		}
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
