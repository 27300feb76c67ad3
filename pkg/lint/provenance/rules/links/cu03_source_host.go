package links

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CU03",
		Name:        "source-host-mismatch",
		Group:       "links",
		Description: "Source URL is not hosted by a known publisher of the record's jurisdiction",
		Severity:    lint.SeverityWarning,
		Check:       checkSourceHost,
		ConfigKeys:  []string{"hosts"},
		Rationale:   "A DE record sourced from a non-DB host usually means the jurisdiction or the URL is wrong.",
		BadExample: `- filename: bahnhoefe.csv
  jurisdiction: DE
  source_url: https://data.sbb.ch/explore/dataset/dienststellen-gemass-opentransportdataswiss/`,
		Fix: "Correct the jurisdiction, or add the host under lint.rules.CU03.hosts.",
	})
}

// DefaultHosts lists the publisher hosts accepted per jurisdiction.
// Subdomains of a listed host match as well.
var DefaultHosts = map[string][]string{
	"DE": {"data.deutschebahn.com"},
	"CH": {"data.sbb.ch", "opentransportdata.swiss"},
	"FR": {"ressources.data.sncf.com", "data.sncf.com", "transport.data.gouv.fr"},
	"UK": {"networkrail.co.uk", "wiki.openraildata.com", "opendata.nationalrail.co.uk"},
	"US": {"wikipedia.org", "amtrak.com"},
}

// SourceHostOptions configures CU03. Hosts configured for a jurisdiction
// replace the defaults for that jurisdiction.
type SourceHostOptions struct {
	Hosts map[string][]string `mapstructure:"hosts"`
}

func checkSourceHost(ctx *provenance.Context, opts map[string]any) []lint.Diagnostic {
	var cfg SourceHostOptions
	if err := lint.DecodeOptions(opts, &cfg); err != nil {
		return []lint.Diagnostic{optionsDiagnostic("CU03", err)}
	}
	hosts := mergeHosts(cfg.Hosts)

	var diagnostics []lint.Diagnostic
	for i, d := range ctx.Datasets() {
		if !d.Jurisdiction.Valid() {
			continue
		}
		allowed, ok := hosts[string(d.Jurisdiction)]
		if !ok || len(allowed) == 0 {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(d.SourceURL))
		if err != nil || u.Hostname() == "" {
			continue // CR02 and CU01 cover these
		}
		host := strings.ToLower(u.Hostname())
		if hostAllowed(host, allowed) {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CU03",
			Severity: lint.SeverityWarning,
			Message: fmt.Sprintf("source host %s is not a known %s publisher (expected %s)",
				host, d.Jurisdiction, strings.Join(allowed, ", ")),
			Subject: d.Filename,
			Field:   "source_url",
			Index:   i,
		})
	}

	return diagnostics
}

func mergeHosts(configured map[string][]string) map[string][]string {
	out := make(map[string][]string, len(DefaultHosts))
	for j, hs := range DefaultHosts {
		out[j] = hs
	}
	for key, hs := range configured {
		j, ok := core.ParseJurisdiction(key)
		if !ok {
			continue
		}
		normalized := make([]string, 0, len(hs))
		for _, h := range hs {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				normalized = append(normalized, h)
			}
		}
		sort.Strings(normalized)
		out[string(j)] = normalized
	}
	return out
}

func hostAllowed(host string, allowed []string) bool {
	for _, h := range allowed {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
