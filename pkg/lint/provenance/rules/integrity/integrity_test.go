package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

var ccBy = core.License{ID: "CC-BY-4.0", URL: "https://creativecommons.org/licenses/by/4.0/"}

func bahnhoefe() core.Dataset {
	return core.Dataset{
		Filename:     "bahnhoefe.csv",
		Jurisdiction: core.JurisdictionDE,
		Licenses:     []core.License{ccBy},
		SourceURL:    "https://data.deutschebahn.com/dataset/data-stationsdaten.html",
	}
}

func contextOf(datasets ...core.Dataset) *provenance.Context {
	return provenance.NewContext(&core.Catalog{Version: core.CatalogVersion, Datasets: datasets}, nil)
}

func ruleIDs(diags []lint.Diagnostic) []string {
	ids := make([]string, 0, len(diags))
	for _, d := range diags {
		ids = append(ids, d.RuleID)
	}
	return ids
}

func TestRulesRegistered(t *testing.T) {
	for _, id := range []string{"CR01", "CR02", "CR03", "CJ01", "CD01", "CD02", "CD03", "CS01"} {
		rule, ok := provenance.GetByID(id)
		require.True(t, ok, "rule %s should be registered", id)
		assert.Equal(t, "integrity", rule.Group)
		assert.NotEmpty(t, rule.Name)
		assert.NotNil(t, rule.Check)
	}
}

func TestCompleteRecordPasses(t *testing.T) {
	ctx := contextOf(bahnhoefe())
	diags := provenance.NewAnalyzer(nil).Analyze(ctx)

	for _, d := range diags {
		assert.NotContains(t, []string{"CR01", "CR02", "CR03", "CJ01", "CD01", "CD02", "CD03"}, d.RuleID, d.String())
	}
}

func TestCheckMissingLicense(t *testing.T) {
	tests := []struct {
		name     string
		licenses []core.License
		want     int
		field    string
	}{
		{name: "url reference", licenses: []core.License{ccBy}, want: 0},
		{name: "text reference", licenses: []core.License{{Text: "Free to use with attribution."}}, want: 0},
		{name: "no licenses", licenses: nil, want: 1, field: "licenses"},
		{name: "empty reference", licenses: []core.License{{ID: "CC-BY-4.0"}}, want: 1, field: "licenses[0]"},
		{name: "one of two empty", licenses: []core.License{ccBy, {Name: "blank"}}, want: 1, field: "licenses[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := bahnhoefe()
			d.Licenses = tt.licenses

			diags := checkMissingLicense(contextOf(d), nil)
			require.Len(t, diags, tt.want)
			if tt.want > 0 {
				assert.Equal(t, "CR01", diags[0].RuleID)
				assert.Equal(t, lint.SeverityError, diags[0].Severity)
				assert.Equal(t, tt.field, diags[0].Field)
				assert.Equal(t, "bahnhoefe.csv", diags[0].Subject)
			}
		})
	}
}

func TestCheckMissingSourceAndFilename(t *testing.T) {
	noSource := bahnhoefe()
	noSource.SourceURL = "   "
	noName := bahnhoefe()
	noName.Filename = ""

	diags := checkMissingSource(contextOf(bahnhoefe(), noSource), nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "CR02", diags[0].RuleID)
	assert.Equal(t, 1, diags[0].Index)

	diags = checkMissingFilename(contextOf(bahnhoefe(), noName), nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "CR03", diags[0].RuleID)
	assert.Equal(t, "filename", diags[0].Field)
	assert.Contains(t, diags[0].Message, "record 2")
}

func TestCheckInvalidJurisdiction(t *testing.T) {
	tests := []struct {
		jurisdiction core.Jurisdiction
		wantDiag     bool
		contains     string
	}{
		{jurisdiction: "DE"},
		{jurisdiction: "CH"},
		{jurisdiction: "FR"},
		{jurisdiction: "UK"},
		{jurisdiction: "US"},
		{jurisdiction: "", wantDiag: true, contains: "no jurisdiction"},
		{jurisdiction: "IT", wantDiag: true, contains: "expected one of DE, CH, FR, UK, US"},
		{jurisdiction: "de", wantDiag: true, contains: `write it as "DE"`},
		{jurisdiction: "GB", wantDiag: true, contains: `write it as "UK"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.jurisdiction), func(t *testing.T) {
			d := bahnhoefe()
			d.Jurisdiction = tt.jurisdiction

			diags := checkInvalidJurisdiction(contextOf(d), nil)
			if !tt.wantDiag {
				assert.Empty(t, diags)
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, "CJ01", diags[0].RuleID)
			assert.Contains(t, diags[0].Message, tt.contains)
		})
	}
}

func TestDuplicateRules(t *testing.T) {
	odbl := core.License{ID: "ODbL-1.0", URL: "https://opendatacommons.org/licenses/odbl/1-0/"}

	same := bahnhoefe()
	same.Licenses = []core.License{{ID: "cc-by-4.0", URL: "https://creativecommons.org/licenses/by/4.0"}}

	conflicting := bahnhoefe()
	conflicting.Licenses = []core.License{odbl}

	otherCountry := bahnhoefe()
	otherCountry.Jurisdiction = core.JurisdictionCH

	tests := []struct {
		name    string
		records []core.Dataset
		want    []string
	}{
		{name: "unique", records: []core.Dataset{bahnhoefe()}, want: []string{}},
		{name: "identical repeat", records: []core.Dataset{bahnhoefe(), same}, want: []string{"CD02"}},
		{name: "license conflict", records: []core.Dataset{bahnhoefe(), conflicting}, want: []string{"CD01"}},
		{name: "jurisdiction conflict", records: []core.Dataset{bahnhoefe(), otherCountry}, want: []string{"CD02", "CD03"}},
		{name: "three copies", records: []core.Dataset{bahnhoefe(), conflicting, same}, want: []string{"CD01", "CD02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := contextOf(tt.records...)

			var diags []lint.Diagnostic
			diags = append(diags, checkConflictingLicense(ctx, nil)...)
			diags = append(diags, checkDuplicateRecord(ctx, nil)...)
			diags = append(diags, checkConflictingJurisdiction(ctx, nil)...)

			assert.ElementsMatch(t, tt.want, ruleIDs(diags))
			for _, d := range diags {
				assert.NotZero(t, d.Index, "the first occurrence is never reported")
			}
		})
	}
}

func TestCheckConflictingLicense_Message(t *testing.T) {
	conflicting := bahnhoefe()
	conflicting.Licenses = []core.License{{Name: "Open Database License", URL: "https://opendatacommons.org/licenses/odbl/1-0/"}}

	diags := checkConflictingLicense(contextOf(bahnhoefe(), conflicting), nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "record 1")
	assert.Contains(t, diags[0].Message, "CC-BY-4.0 vs Open Database License")
}

func TestCheckSubmoduleRepository(t *testing.T) {
	ctx := provenance.NewContext(&core.Catalog{
		Datasets: []core.Dataset{bahnhoefe()},
		Submodules: []core.Submodule{
			{Name: "trainline", Repository: "https://github.com/trainline-eu/stations"},
			{Name: "ds100", Path: "ds100"},
		},
	}, nil)

	diags := checkSubmoduleRepository(ctx, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "CS01", diags[0].RuleID)
	assert.Equal(t, lint.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "submodule:ds100", diags[0].Subject)
	assert.Equal(t, 2, diags[0].Index)
}
