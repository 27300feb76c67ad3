// Package main provides tests for the railcat CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tc-opendata/railcat/internal/cli"
	"github.com/tc-opendata/railcat/internal/cli/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "railcat v")
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "railcat "+cli.Version)
}

func TestHelpCommand(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"list", "show", "lint", "rules", "links", "history", "readme", "serve", "init", "completion"} {
		assert.Contains(t, out, expected)
	}
	for _, flag := range []string{"--config", "--catalog", "--state", "--readme", "--output", "--verbose"} {
		assert.Contains(t, out, flag)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "railcat")

	_, err = run(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestShowBuiltinCatalog(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "show", "bahnhoefe.csv", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# bahnhoefe.csv")
	assert.Contains(t, out, "data.deutschebahn.com")
}

func TestBuiltinCatalogLintsClean(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "lint", "-o", "markdown")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No issues found.")
}

func TestInitThenLint(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := run(t, "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "railcat.yaml"))

	out, err := run(t, "lint", "--output", "json")
	require.NoError(t, err, out)
	assert.True(t, strings.HasPrefix(out, "{"), "json output expected, got %q", out)
	assert.Contains(t, out, filepath.Join(dir, "catalog.yaml"))
}

func TestInvalidOutputFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "list", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestCatalogFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	custom := `version: 1
datasets:
  - filename: only.csv
    jurisdiction: FR
    source_url: https://ressources.data.sncf.com/explore/dataset/gares/
    licenses:
      - id: ODbL-1.0
        url: https://opendatacommons.org/licenses/odbl/1-0/
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte(custom), 0o600))

	out, err := run(t, "list", "--catalog", "mine.yaml", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "only.csv")
	assert.Contains(t, out, "France (FR)")
	assert.NotContains(t, out, "bahnhoefe.csv")
}

func TestVerboseLogsToStderr(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "list", "-v", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "using embedded catalog")
}
