package readme

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/testutil"
	"github.com/tc-opendata/railcat/pkg/core"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.LoadDefault()
	require.NoError(t, err)
	return c
}

func TestRender_DefaultCatalog(t *testing.T) {
	out, err := Render(defaultCatalog(t))
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, GeneratedMarker+"\n"))
	assert.Contains(t, doc, "# Rail open data")
	assert.Contains(t, doc, "## Germany (DE)")
	assert.Contains(t, doc, "## Switzerland (CH)")
	assert.Contains(t, doc, "## United States (US)")
	assert.Contains(t, doc, "| `bahnhoefe.csv` | Stationsdaten |")
	assert.Contains(t, doc, "[data.deutschebahn.com](https://data.deutschebahn.com/dataset/data-stationsdaten.html)")
	assert.Contains(t, doc, "## Submodules")
	assert.Contains(t, doc, "[trainline](https://github.com/trainline-eu/stations)")
	assert.NotContains(t, doc, "\n\n\n")
	assert.True(t, strings.HasSuffix(doc, "\n"))
	assert.False(t, strings.HasSuffix(doc, "\n\n"))

	// sections follow the canonical jurisdiction order
	assert.Less(t, strings.Index(doc, "(DE)"), strings.Index(doc, "(CH)"))
	assert.Less(t, strings.Index(doc, "(FR)"), strings.Index(doc, "(UK)"))
}

func TestRender_Deterministic(t *testing.T) {
	c := defaultCatalog(t)
	a, err := Render(c)
	require.NoError(t, err)
	b, err := Render(c)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRender_EdgeCases(t *testing.T) {
	c := catalog.New(&core.Catalog{
		Version: core.CatalogVersion,
		Datasets: []core.Dataset{
			{
				Filename:     "pipes.csv",
				Jurisdiction: core.JurisdictionFR,
				Title:        "A | B",
				Licenses:     []core.License{{Name: "Custom", Text: "Use freely, keep this notice."}},
				SourceURL:    "https://transport.data.gouv.fr/datasets/gares",
			},
			{Filename: "orphan.csv", Jurisdiction: "IT"},
		},
	}, "test.yaml")

	out, err := Render(c)
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "# Data sources", "title falls back when unset")
	assert.Contains(t, doc, `A \| B`)
	assert.Contains(t, doc, "**Custom**")
	assert.Contains(t, doc, "Use freely, keep this notice.")
	assert.Contains(t, doc, "## IT")
	assert.Contains(t, doc, "| `orphan.csv` | orphan.csv | _missing_ | _missing_ |")
	assert.NotContains(t, doc, "## Submodules")
}

func TestVerify(t *testing.T) {
	c := defaultCatalog(t)
	rendered, err := Render(c)
	require.NoError(t, err)

	t.Run("up to date", func(t *testing.T) {
		drift, err := Verify(c, rendered)
		require.NoError(t, err)
		assert.Nil(t, drift)
	})

	t.Run("crlf line endings are accepted", func(t *testing.T) {
		crlf := strings.ReplaceAll(string(rendered), "\n", "\r\n")
		drift, err := Verify(c, []byte(crlf))
		require.NoError(t, err)
		assert.Nil(t, drift)
	})

	t.Run("edited line", func(t *testing.T) {
		edited := strings.Replace(string(rendered), "Stationsdaten", "Stations", 1)
		drift, err := Verify(c, []byte(edited))
		require.NoError(t, err)
		require.NotNil(t, drift)
		assert.False(t, drift.Manual)
		assert.Greater(t, drift.Line, 1)
		assert.Contains(t, drift.Want, "Stationsdaten")
		assert.Contains(t, drift.String(), "out of date")
		assert.Equal(t, rendered, drift.Expected)
	})

	t.Run("truncated", func(t *testing.T) {
		drift, err := Verify(c, rendered[:len(rendered)/2])
		require.NoError(t, err)
		require.NotNil(t, drift)
	})

	t.Run("hand-written readme", func(t *testing.T) {
		drift, err := Verify(c, []byte("# My data\n"))
		require.NoError(t, err)
		require.NotNil(t, drift)
		assert.True(t, drift.Manual)
		assert.Equal(t, 1, drift.Line)
	})
}

func TestVerifyFile(t *testing.T) {
	c := defaultCatalog(t)
	path := filepath.Join(t.TempDir(), "README.md")

	drift, err := VerifyFile(c, path)
	require.NoError(t, err)
	require.NotNil(t, drift)
	assert.True(t, drift.Missing)

	require.NoError(t, WriteFile(c, path))

	drift, err = VerifyFile(c, path)
	require.NoError(t, err)
	assert.Nil(t, drift)
}

func TestExtractLinks(t *testing.T) {
	doc := []byte("# Title\n" +
		"See [DB](https://data.deutschebahn.com) and [local](docs/file.md).\n" +
		"```\n[ignored](https://example.org)\n```\n" +
		"[anchor](#top) [SBB](https://data.sbb.ch/)\n")

	links := ExtractLinks(doc)
	require.Len(t, links, 4)
	assert.Equal(t, Link{Text: "DB", URL: "https://data.deutschebahn.com", Line: 2}, links[0])
	assert.False(t, links[1].External())
	assert.Equal(t, 6, links[3].Line)

	assert.Equal(t, []string{"https://data.deutschebahn.com", "https://data.sbb.ch/"}, ExternalURLs(doc))
}

func TestRenderedLinksMatchCatalogURLs(t *testing.T) {
	c := defaultCatalog(t)
	out, err := Render(c)
	require.NoError(t, err)

	linked := make(map[string]bool)
	for _, u := range ExternalURLs(out) {
		linked[u] = true
	}
	for _, usage := range c.URLs() {
		assert.True(t, linked[usage.URL], "%s is not linked from the README", usage.URL)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, testutil.NewTestLogger(t), func() error {
			calls.Add(1)
			return nil
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n# edit "+string(rune('a'+i))+"\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(3 * debounceDelay)
	assert.Equal(t, int32(1), calls.Load(), "bursts of writes are debounced")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "catalog.yaml"), nil, func() error { return nil })
	require.Error(t, err)
}
