package links

import (
	"fmt"

	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CU02",
		Name:        "unreachable-url",
		Group:       "links",
		Description: "Link check could not retrieve the URL",
		Severity:    lint.SeverityWarning,
		Check:       checkUnreachableURL,
		Rationale:   "Publishers move dataset pages. A dead link means the provenance can no longer be verified.",
		Fix:         "Find the dataset's new location and update the URL.",
	})
}

// checkUnreachableURL reports every reference to a URL the link check marked
// as failed. It is silent when no link results were supplied.
func checkUnreachableURL(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	if !ctx.HasLinkResults() {
		return nil
	}

	var diagnostics []lint.Diagnostic
	for _, r := range refs(ctx) {
		res, ok := ctx.Link(r.URL)
		if !ok || !res.Failed() {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CU02",
			Severity: lint.SeverityWarning,
			Message:  fmt.Sprintf("%s is %s", r.URL, describe(res)),
			Subject:  r.Subject,
			Field:    r.Field,
			Index:    r.Index,
		})
	}

	return diagnostics
}

func describe(res core.LinkResult) string {
	switch {
	case res.StatusCode != 0:
		return fmt.Sprintf("%s (HTTP %d)", res.Status, res.StatusCode)
	case res.Error != "":
		return fmt.Sprintf("%s (%s)", res.Status, res.Error)
	default:
		return string(res.Status)
	}
}
