package lint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_JSONRoundTrip(t *testing.T) {
	in := []Diagnostic{
		{RuleID: "CR01", Severity: SeverityError, Message: "no license", Subject: "a.csv", Field: "licenses", Index: 0},
		{RuleID: "CD02", Severity: SeverityInfo, Message: "duplicate", Subject: "a.csv", Index: 1},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"error"`)

	var out []Diagnostic
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestFilterBySeverity(t *testing.T) {
	diags := []Diagnostic{
		{RuleID: "CR01", Severity: SeverityError},
		{RuleID: "CU03", Severity: SeverityWarning},
		{RuleID: "CD02", Severity: SeverityInfo},
	}

	got := FilterBySeverity(diags, SeverityWarning)
	require.Len(t, got, 2)
	assert.Equal(t, "CR01", got[0].RuleID)
	assert.Equal(t, "CU03", got[1].RuleID)

	counts := CountBySeverity(diags)
	assert.Equal(t, 1, counts[SeverityInfo])
}
