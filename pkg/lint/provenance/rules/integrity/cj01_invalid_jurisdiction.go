package integrity

import (
	"fmt"
	"strings"

	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CJ01",
		Name:        "invalid-jurisdiction",
		Group:       "integrity",
		Description: "Jurisdiction is missing or not one of DE, CH, FR, UK, US",
		Severity:    lint.SeverityError,
		Check:       checkInvalidJurisdiction,
		Rationale:   "The jurisdiction decides which authority's attribution terms apply and where the record is listed in the README.",
		BadExample:  "jurisdiction: Germany",
		GoodExample: "jurisdiction: DE",
		Fix:         "Use one of the upper-case codes DE, CH, FR, UK or US.",
	})
}

// checkInvalidJurisdiction flags records whose jurisdiction is not an exact
// known code. Codes that only differ in case, or the GB alias, get a hint
// with the canonical spelling.
func checkInvalidJurisdiction(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for i, d := range ctx.Datasets() {
		raw := strings.TrimSpace(string(d.Jurisdiction))
		if raw == "" {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "CJ01",
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("'%s' has no jurisdiction", subjectOf(d)),
				Subject:  d.Filename,
				Field:    "jurisdiction",
				Index:    i,
			})
			continue
		}

		if d.Jurisdiction.Valid() {
			continue
		}

		msg := fmt.Sprintf("'%s' has unknown jurisdiction %q (expected one of %s)",
			subjectOf(d), raw, knownCodes())
		if canonical, ok := core.ParseJurisdiction(raw); ok {
			msg = fmt.Sprintf("'%s' has jurisdiction %q, write it as %q", subjectOf(d), raw, canonical)
		}

		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CJ01",
			Severity: lint.SeverityError,
			Message:  msg,
			Subject:  d.Filename,
			Field:    "jurisdiction",
			Index:    i,
		})
	}

	return diagnostics
}

func knownCodes() string {
	all := core.AllJurisdictions()
	codes := make([]string, len(all))
	for i, j := range all {
		codes[i] = string(j)
	}
	return strings.Join(codes, ", ")
}
