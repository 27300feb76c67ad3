package links

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CU01",
		Name:        "malformed-url",
		Group:       "links",
		Description: "URL is not an absolute http(s) URL with a host",
		Severity:    lint.SeverityError,
		Check:       checkMalformedURL,
		ConfigKeys:  []string{"require_https"},
		BadExample:  "source_url: data.deutschebahn.com/dataset/data-stationsdaten",
		GoodExample: "source_url: https://data.deutschebahn.com/dataset/data-stationsdaten.html",
		Fix:         "Write the full URL including the https:// scheme.",
	})
}

// MalformedURLOptions configures CU01.
type MalformedURLOptions struct {
	RequireHTTPS bool `mapstructure:"require_https"`
}

func checkMalformedURL(ctx *provenance.Context, opts map[string]any) []lint.Diagnostic {
	var cfg MalformedURLOptions
	if err := lint.DecodeOptions(opts, &cfg); err != nil {
		return []lint.Diagnostic{optionsDiagnostic("CU01", err)}
	}

	var diagnostics []lint.Diagnostic
	for _, r := range refs(ctx) {
		problem := urlProblem(r.URL, cfg.RequireHTTPS)
		if problem == "" {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CU01",
			Severity: lint.SeverityError,
			Message:  fmt.Sprintf("%q %s", r.URL, problem),
			Subject:  r.Subject,
			Field:    r.Field,
			Index:    r.Index,
		})
	}

	return diagnostics
}

// urlProblem describes what is wrong with raw, or returns "" when it is usable.
func urlProblem(raw string, requireHTTPS bool) string {
	if strings.ContainsAny(raw, " \t\n") {
		return "contains whitespace"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "cannot be parsed"
	}
	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "":
		return "is not absolute (missing scheme)"
	case scheme != "http" && scheme != "https":
		return fmt.Sprintf("uses unsupported scheme %q", u.Scheme)
	case u.Host == "":
		return "has no host"
	case requireHTTPS && scheme != "https":
		return "uses plain http"
	}
	return ""
}

// optionsDiagnostic reports rule options that could not be decoded.
func optionsDiagnostic(ruleID string, err error) lint.Diagnostic {
	return lint.Diagnostic{
		RuleID:   ruleID,
		Severity: lint.SeverityError,
		Message:  err.Error(),
		Subject:  "lint.rules." + ruleID,
		Index:    -1,
	}
}
