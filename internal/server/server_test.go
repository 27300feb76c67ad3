package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/state"
	"github.com/tc-opendata/railcat/internal/testutil"
	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint"
)

func newTestServer(t *testing.T, store core.Store) *httptest.Server {
	t.Helper()
	c, err := catalog.LoadDefault()
	require.NoError(t, err)

	srv := New(Config{
		Catalog:    c,
		Store:      store,
		LintConfig: lint.NewConfig(),
		Logger:     testutil.NewTestLogger(t),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	var body map[string]any
	resp := getJSON(t, ts.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.InDelta(t, 12, body["datasets"], 0)
}

func TestDatasets(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		query  string
		status int
		count  int
	}{
		{name: "all", query: "", status: http.StatusOK, count: 12},
		{name: "germany", query: "?jurisdiction=DE", status: http.StatusOK, count: 5},
		{name: "lower case", query: "?jurisdiction=ch", status: http.StatusOK, count: 2},
		{name: "gb alias", query: "?jurisdiction=GB", status: http.StatusOK, count: 2},
		{name: "unknown", query: "?jurisdiction=IT", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status != http.StatusOK {
				var body map[string]string
				resp := getJSON(t, ts.URL+"/api/datasets"+tt.query, &body)
				assert.Equal(t, tt.status, resp.StatusCode)
				assert.Contains(t, body["error"], "unknown jurisdiction")
				return
			}
			var datasets []core.Dataset
			resp := getJSON(t, ts.URL+"/api/datasets"+tt.query, &datasets)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Len(t, datasets, tt.count)
		})
	}
}

func TestDataset(t *testing.T) {
	ts := newTestServer(t, nil)

	var d core.Dataset
	resp := getJSON(t, ts.URL+"/api/datasets/bahnhoefe.csv", &d)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, core.JurisdictionDE, d.Jurisdiction)
	require.NotEmpty(t, d.Licenses)
	assert.Equal(t, "CC-BY-4.0", d.Licenses[0].ID)
	assert.Contains(t, d.SourceURL, "data.deutschebahn.com")

	var body map[string]string
	resp = getJSON(t, ts.URL+"/api/datasets/missing.csv", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "missing.csv")
}

func TestJurisdictionsAndSubmodules(t *testing.T) {
	ts := newTestServer(t, nil)

	var js []jurisdictionSummary
	getJSON(t, ts.URL+"/api/jurisdictions", &js)
	require.Len(t, js, 5)
	assert.Equal(t, core.JurisdictionDE, js[0].Code)
	assert.Equal(t, "Germany", js[0].Country)
	assert.Equal(t, 5, js[0].Datasets)

	var subs []core.Submodule
	getJSON(t, ts.URL+"/api/submodules", &subs)
	require.Len(t, subs, 1)
	assert.Equal(t, "trainline", subs[0].Name)
}

func TestDiagnostics(t *testing.T) {
	t.Run("without store", func(t *testing.T) {
		ts := newTestServer(t, nil)

		var body diagnosticsResponse
		resp := getJSON(t, ts.URL+"/api/diagnostics", &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotNil(t, body.Diagnostics)
		assert.Zero(t, body.Counts["error"], "the embedded catalog has no errors")
		assert.Empty(t, body.LinkRunID)
	})

	t.Run("with cached link results", func(t *testing.T) {
		store := state.NewSQLiteStore(testutil.NewTestLogger(t))
		require.NoError(t, store.Open(":memory:"))
		t.Cleanup(func() { _ = store.Close() })
		require.NoError(t, store.Migrate())

		run, err := store.CreateCheckRun(catalog.EmbeddedPath)
		require.NoError(t, err)
		require.NoError(t, store.SaveLinkResults(run.ID, []core.LinkResult{{
			URL:        "https://data.deutschebahn.com/dataset/data-stationsdaten.html",
			Status:     core.LinkStatusBroken,
			StatusCode: 404,
			CheckedAt:  time.Now(),
		}}))
		require.NoError(t, store.CompleteCheckRun(run.ID, core.CheckRunCompleted, ""))

		ts := newTestServer(t, store)

		var body diagnosticsResponse
		getJSON(t, ts.URL+"/api/diagnostics", &body)
		assert.Equal(t, run.ID, body.LinkRunID)
		require.Len(t, body.Diagnostics, body.Counts["warning"]+body.Counts["info"]+body.Counts["error"]+body.Counts["hint"])

		found := false
		for _, d := range body.Diagnostics {
			if d.RuleID == "CU02" && d.Subject == "bahnhoefe.csv" {
				found = true
			}
		}
		assert.True(t, found, "CU02 should report the broken source URL")

		var runs []core.CheckRun
		getJSON(t, ts.URL+"/api/checks", &runs)
		require.Len(t, runs, 1)

		var detail struct {
			Run     core.CheckRun     `json:"run"`
			Results []core.LinkResult `json:"results"`
		}
		getJSON(t, ts.URL+"/api/checks/"+run.ID, &detail)
		assert.Equal(t, 1, detail.Run.URLCount)
		assert.Len(t, detail.Results, 1)

		var body404 map[string]string
		resp := getJSON(t, ts.URL+"/api/checks/nope", &body404)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = getJSON(t, ts.URL+"/api/checks?limit=abc", &body404)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestChecks_NoStore(t *testing.T) {
	ts := newTestServer(t, nil)

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/checks", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/jurisdictions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServeListener_Shutdown(t *testing.T) {
	c, err := catalog.LoadDefault()
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(Config{Catalog: c, Logger: testutil.NewTestLogger(t)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz") //nolint:noctx // test
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRequestLogging(t *testing.T) {
	c, err := catalog.LoadDefault()
	require.NoError(t, err)

	logger, logs := testutil.NewBufferLogger()
	srv := New(Config{Catalog: c, Logger: logger})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	getJSON(t, ts.URL+"/api/datasets/nope.csv", nil)

	out := logs.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "path=/api/datasets/nope.csv")
	assert.Contains(t, out, "status=404")
}
