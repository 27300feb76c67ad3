package integrity

import (
	"fmt"
	"strings"

	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CR03",
		Name:        "missing-filename",
		Group:       "integrity",
		Description: "Record has no filename",
		Severity:    lint.SeverityError,
		Check:       checkMissingFilename,
	})
}

func checkMissingFilename(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for i, d := range ctx.Datasets() {
		if strings.TrimSpace(d.Filename) == "" {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "CR03",
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("record %d has no filename", i+1),
				Field:    "filename",
				Index:    i,
			})
		}
	}

	return diagnostics
}
