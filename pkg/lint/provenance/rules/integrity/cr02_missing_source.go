package integrity

import (
	"fmt"
	"strings"

	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CR02",
		Name:        "missing-source",
		Group:       "integrity",
		Description: "Record has no source URL",
		Severity:    lint.SeverityError,
		Check:       checkMissingSource,
		Rationale:   "The source URL is how a reviewer verifies the license and fetches fresh data.",
		Fix:         "Set source_url to the dataset page of the publisher.",
	})
}

func checkMissingSource(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for i, d := range ctx.Datasets() {
		if strings.TrimSpace(d.SourceURL) == "" {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "CR02",
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("'%s' has no source URL", subjectOf(d)),
				Subject:  d.Filename,
				Field:    "source_url",
				Index:    i,
			})
		}
	}

	return diagnostics
}
