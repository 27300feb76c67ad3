package integrity

import (
	"fmt"
	"strings"

	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CS01",
		Name:        "submodule-repository",
		Group:       "integrity",
		Description: "Submodule has no repository URL",
		Severity:    lint.SeverityWarning,
		Check:       checkSubmoduleRepository,
		Rationale:   "Submodules are external collaborators. Without a repository URL nobody can find out what they contain or under which terms.",
		GoodExample: `submodules:
  - name: trainline
    path: stations
    repository: https://github.com/trainline-eu/stations`,
	})
}

// checkSubmoduleRepository flags submodules without a repository. Submodule
// diagnostics are indexed after the dataset records.
func checkSubmoduleRepository(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	offset := len(ctx.Datasets())

	for i, s := range ctx.Submodules() {
		if strings.TrimSpace(s.Repository) != "" {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CS01",
			Severity: lint.SeverityWarning,
			Message:  fmt.Sprintf("submodule '%s' has no repository URL", s.Name),
			Subject:  "submodule:" + s.Name,
			Field:    "repository",
			Index:    offset + i,
		})
	}

	return diagnostics
}
