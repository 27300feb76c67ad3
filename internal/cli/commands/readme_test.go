package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tc-opendata/railcat/internal/cli/testutil"
	"github.com/tc-opendata/railcat/internal/readme"
)

func TestReadme_WriteAndCheck(t *testing.T) {
	dir := setupProject(t, testutil.SampleCatalog, nil)
	path := filepath.Join(dir, "README.md")

	_, _, err := execute(NewReadmeCommand(), "--check")
	require.Error(t, err, "missing README is drift")
	assert.Contains(t, err.Error(), "out of date")

	out, _, err := execute(NewReadmeCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path+" (2 datasets)")

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), readme.GeneratedMarker)
	assert.Contains(t, string(written), "bahnhoefe.csv")

	out, _, err = execute(NewReadmeCommand(), "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	require.NoError(t, os.WriteFile(path, append(written, []byte("\nhand edit\n")...), 0o600))
	_, errOut, err := execute(NewReadmeCommand(), "--check")
	require.Error(t, err)
	assert.Contains(t, errOut, "out of date at line")
}

func TestReadme_Stdout(t *testing.T) {
	dir := setupProject(t, testutil.SampleCatalog, nil)

	out, _, err := execute(NewReadmeCommand(), "--stdout")
	require.NoError(t, err)
	assert.Contains(t, out, readme.GeneratedMarker)
	assert.Contains(t, out, "# Test data")

	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.True(t, os.IsNotExist(err), "--stdout must not write the file")
}

func TestReadme_WatchNeedsCatalogFile(t *testing.T) {
	setupProject(t, testutil.SampleCatalog, nil)
	cmdCtx := NewCommandContext(NewReadmeCommand())
	cmdCtx.Cfg.CatalogPath = ""
	t.Cleanup(func() { cmdCtx.Cfg.CatalogPath = "catalog.yaml" })

	err := watchReadme(t.Context(), cmdCtx, "README.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a catalog file")
}
