// Package rules registers all catalog lint rules.
// Import this package to register every rule with the global registry.
package rules

import (
	// Blank imports trigger init() functions that register rules with the global registry.
	_ "github.com/tc-opendata/railcat/pkg/lint/provenance/rules/integrity" // registers CR*, CJ*, CD*, CS* rules
	_ "github.com/tc-opendata/railcat/pkg/lint/provenance/rules/links"     // registers CU* rules
)
