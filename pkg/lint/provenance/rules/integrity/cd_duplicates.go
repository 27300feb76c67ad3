package integrity

import (
	"fmt"
	"strings"

	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

func init() {
	provenance.Register(provenance.RuleDef{
		ID:          "CD01",
		Name:        "conflicting-license",
		Group:       "integrity",
		Description: "Same filename is listed more than once with different license references",
		Severity:    lint.SeverityError,
		Check:       checkConflictingLicense,
		Rationale:   "A file can only be distributed under one set of terms. Two records with different licenses make the catalog ambiguous.",
		Fix:         "Keep a single record per filename, or rename one of the files.",
	})

	provenance.Register(provenance.RuleDef{
		ID:          "CD02",
		Name:        "duplicate-record",
		Group:       "integrity",
		Description: "Same filename is listed more than once with identical license references",
		Severity:    lint.SeverityInfo,
		Check:       checkDuplicateRecord,
		Fix:         "Remove the repeated record.",
	})

	provenance.Register(provenance.RuleDef{
		ID:          "CD03",
		Name:        "conflicting-jurisdiction",
		Group:       "integrity",
		Description: "Same filename is claimed by more than one jurisdiction",
		Severity:    lint.SeverityError,
		Check:       checkConflictingJurisdiction,
		Rationale:   "Every filename maps to exactly one jurisdiction.",
	})
}

// repeat is a record whose filename already appeared earlier in the document.
type repeat struct {
	first int // index of the first record with the filename
	index int
}

// repeats returns every record that repeats an earlier filename, in document order.
func repeats(ctx *provenance.Context) []repeat {
	firstSeen := make(map[string]int)
	var out []repeat
	for i, d := range ctx.Datasets() {
		name := strings.TrimSpace(d.Filename)
		if name == "" {
			continue
		}
		if first, ok := firstSeen[name]; ok {
			out = append(out, repeat{first: first, index: i})
			continue
		}
		firstSeen[name] = i
	}
	return out
}

func checkConflictingLicense(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	records := ctx.Datasets()

	for _, r := range repeats(ctx) {
		first, d := records[r.first], records[r.index]
		if sameLicenses(first, d) {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CD01",
			Severity: lint.SeverityError,
			Message: fmt.Sprintf("'%s' is already listed as record %d with different licenses (%s vs %s)",
				d.Filename, r.first+1, licenseLabels(first.Licenses), licenseLabels(d.Licenses)),
			Subject: d.Filename,
			Field:   "licenses",
			Index:   r.index,
		})
	}

	return diagnostics
}

func checkDuplicateRecord(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	records := ctx.Datasets()

	for _, r := range repeats(ctx) {
		first, d := records[r.first], records[r.index]
		if !sameLicenses(first, d) {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CD02",
			Severity: lint.SeverityInfo,
			Message:  fmt.Sprintf("'%s' repeats record %d", d.Filename, r.first+1),
			Subject:  d.Filename,
			Field:    "filename",
			Index:    r.index,
		})
	}

	return diagnostics
}

func checkConflictingJurisdiction(ctx *provenance.Context, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	records := ctx.Datasets()

	for _, r := range repeats(ctx) {
		first, d := records[r.first], records[r.index]
		if strings.EqualFold(strings.TrimSpace(string(first.Jurisdiction)), strings.TrimSpace(string(d.Jurisdiction))) {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CD03",
			Severity: lint.SeverityError,
			Message: fmt.Sprintf("'%s' is listed under %s in record %d and under %s here",
				d.Filename, first.Jurisdiction, r.first+1, d.Jurisdiction),
			Subject: d.Filename,
			Field:   "jurisdiction",
			Index:   r.index,
		})
	}

	return diagnostics
}
