package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func linkCatalog(base string) string {
	return strings.ReplaceAll(`version: 1
datasets:
  - filename: bahnhoefe.csv
    jurisdiction: DE
    source_url: BASE/ok
    licenses:
      - url: BASE/missing
  - filename: bahnsteige.csv
    jurisdiction: DE
    source_url: BASE/ok
    licenses:
      - url: BASE/license
`, "BASE", base)
}

var fastLinks = map[string]string{
	"RAILCAT_LINKS__RATE_PER_HOST": "100",
	"RAILCAT_LINKS__RETRIES":       "0",
}

func TestLinks_ReportsFailures(t *testing.T) {
	ts := linkServer(t)
	setupProject(t, linkCatalog(ts.URL), fastLinks)

	out, _, err := execute(NewLinksCommand())
	require.Error(t, err)
	assert.Equal(t, "1 of 3 links failed", err.Error())
	assert.Contains(t, out, "# Link check (3 URLs)")
	assert.Contains(t, out, "- [FAILED] "+ts.URL+"/missing (HTTP 404; used by bahnhoefe.csv)")
	assert.NotContains(t, out, ts.URL+"/ok", "working links are hidden without --all")

	out, _, _ = execute(NewLinksCommand(), "--all")
	assert.Contains(t, out, "- [SUCCESS] "+ts.URL+"/ok (HTTP 200; used by bahnhoefe.csv, bahnsteige.csv)")
}

func TestLinks_SaveAndHistory(t *testing.T) {
	ts := linkServer(t)
	env := map[string]string{"RAILCAT_OUTPUT": "json"}
	for k, v := range fastLinks {
		env[k] = v
	}
	setupProject(t, linkCatalog(ts.URL), env)

	out, _, err := execute(NewLinksCommand(), "--save")
	require.Error(t, err)

	var saved struct {
		RunID  string `json:"run_id"`
		Failed int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	require.NotEmpty(t, saved.RunID)
	assert.Equal(t, 1, saved.Failed)

	out, _, err = execute(NewHistoryCommand())
	require.NoError(t, err)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, saved.RunID, runs[0]["id"])
	assert.Equal(t, "completed", runs[0]["status"])
	assert.InDelta(t, 3, runs[0]["url_count"], 0)
	assert.InDelta(t, 1, runs[0]["failed_count"], 0)

	out, _, err = execute(NewHistoryCommand(), saved.RunID)
	require.NoError(t, err)
	var detail struct {
		Run     map[string]any   `json:"run"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Len(t, detail.Results, 3)

	_, _, err = execute(NewHistoryCommand(), "no-such-run")
	require.Error(t, err)
}

func TestHistory_Empty(t *testing.T) {
	ts := linkServer(t)
	setupProject(t, linkCatalog(ts.URL), nil)

	out, _, err := execute(NewHistoryCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "No saved link checks")
}
