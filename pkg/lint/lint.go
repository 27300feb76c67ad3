// Package lint provides the shared contracts for catalog linting.
//
// # Architecture
//
//  1. Root package (pkg/lint/): severities, diagnostics, configuration and option helpers
//  2. Provenance subsystem (pkg/lint/provenance/): the catalog context, rule registry and analyzer
//  3. Rules (pkg/lint/provenance/rules/...): integrity and link rules registered from init()
//
// # Rule Registration
//
// Rules register themselves when their packages are imported:
//
//	import _ "github.com/tc-opendata/railcat/pkg/lint/provenance/rules"
//
// # Rule Categories
//
//   - CR (Required): records carry a filename, a license and a source
//   - CJ (Jurisdiction): jurisdiction codes are known
//   - CD (Duplicates): filenames are not claimed twice with different terms
//   - CS (Submodules): submodules point at a repository
//   - CU (URLs): URLs are well-formed, reachable and hosted where expected
//
// # Configuration
//
//	config := lint.NewConfig()
//	config.Disable("CD02")
//	config.SetSeverity("CU02", core.SeverityError)
//	config.SetRuleOptions("CU03", map[string]any{"hosts": map[string]any{"DE": []any{"deutschebahn.com"}}})
package lint

import (
	"fmt"

	"github.com/tc-opendata/railcat/pkg/core"
)

// Severity is an alias for core.Severity.
type Severity = core.Severity

// Severity levels re-exported from core.
const (
	SeverityError   = core.SeverityError
	SeverityWarning = core.SeverityWarning
	SeverityInfo    = core.SeverityInfo
	SeverityHint    = core.SeverityHint
)

// ParseSeverity is re-exported from core.
func ParseSeverity(s string) (Severity, bool) {
	return core.ParseSeverity(s)
}

// Diagnostic represents a lint finding against the catalog.
type Diagnostic struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Subject  string   `json:"subject,omitempty"` // dataset filename or "submodule:<name>"
	Field    string   `json:"field,omitempty"`   // offending field, e.g. "source_url"
	Index    int      `json:"index"`             // position of the record in the document, -1 if none
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	subject := d.Subject
	if subject == "" {
		subject = "catalog"
	}
	if d.Field != "" {
		subject += "." + d.Field
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.RuleID, d.Severity, subject, d.Message)
}

// FilterBySeverity keeps diagnostics at or above threshold.
func FilterBySeverity(diags []Diagnostic, threshold Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity.AtLeast(threshold) {
			out = append(out, d)
		}
	}
	return out
}

// CountBySeverity tallies diagnostics per severity.
func CountBySeverity(diags []Diagnostic) map[Severity]int {
	counts := make(map[Severity]int)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}
