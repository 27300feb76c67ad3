package integrity

import (
	"fmt"

	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CR01",
		Name:        "missing-license",
		Group:       "integrity",
		Description: "Record has no license reference, or a reference with neither URL nor text",
		Severity:    lint.SeverityError,
		Check:       checkMissingLicense,
		Rationale:   "Every data file is redistributed under its publisher's terms. Without a license reference nobody can tell whether reuse is allowed.",
		BadExample: `- filename: bahnhoefe.csv
  jurisdiction: DE
  source_url: https://data.deutschebahn.com/dataset/data-stationsdaten.html`,
		GoodExample: `- filename: bahnhoefe.csv
  jurisdiction: DE
  source_url: https://data.deutschebahn.com/dataset/data-stationsdaten.html
  licenses:
    - id: CC-BY-4.0
      url: https://creativecommons.org/licenses/by/4.0/`,
		Fix: "Add a licenses entry with the URL of the terms, or paste the terms into its text field.",
	})
}

// checkMissingLicense flags records without at least one usable license
// reference, and individual references that carry neither a URL nor text.
func checkMissingLicense(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for i, d := range ctx.Datasets() {
		if len(d.Licenses) == 0 {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "CR01",
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("'%s' has no license reference", subjectOf(d)),
				Subject:  d.Filename,
				Field:    "licenses",
				Index:    i,
			})
			continue
		}

		for n, l := range d.Licenses {
			if l.Empty() {
				diagnostics = append(diagnostics, lint.Diagnostic{
					RuleID:   "CR01",
					Severity: lint.SeverityError,
					Message:  fmt.Sprintf("license reference %d of '%s' has neither a url nor text", n+1, subjectOf(d)),
					Subject:  d.Filename,
					Field:    fmt.Sprintf("licenses[%d]", n),
					Index:    i,
				})
			}
		}
	}

	return diagnostics
}
