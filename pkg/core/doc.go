// Package core defines the shared language of railcat.
//
// This package contains:
//   - Catalog entities (Dataset, License, Submodule, Catalog)
//   - The jurisdiction enumeration and its authorities
//   - Lint vocabulary shared by rules and tooling (Severity, RuleInfo)
//   - Link-check results and the history Store interface
//   - Configuration types decoded by koanf (LintConfig, LinksConfig, ServeConfig)
//
// pkg/core imports only the standard library. Every other package depends on
// core, never the reverse.
package core
