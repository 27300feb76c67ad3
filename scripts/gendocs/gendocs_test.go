package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPage(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index := readPage(t, dir, "index.md")
	assert.Contains(t, index, "# CLI Reference")
	assert.Contains(t, index, "[`lint`](/cli/lint)")
	assert.Contains(t, index, "`--catalog`")
	assert.Contains(t, index, "`RAILCAT_*`")
	assert.Contains(t, index, "| `links` | Any URL broken or unreachable |")
	assert.NotContains(t, index, "leapsql")

	lint := readPage(t, dir, "lint.md")
	assert.Contains(t, lint, "# railcat lint")
	assert.Contains(t, lint, "`--severity`")
	assert.Contains(t, lint, "Exits with status 1 when")

	show := readPage(t, dir, "show.md")
	assert.Contains(t, show, "railcat show uk_corpus.json -o json")
	assert.NotContains(t, show, "## Exit Status")
}

func TestGenerateLintDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateLintDocs(dir))

	assert.Contains(t, readPage(t, dir, "index.md"), "**11 rules**")
	rules := readPage(t, dir, "rules.md")
	assert.Contains(t, rules, "## Integrity {#integrity}")
	assert.Contains(t, rules, "### CU03 - source-host-mismatch {#CU03}")
}

func TestGenerateSchemaDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateSchemaDocs(dir))

	cfg := readPage(t, dir, "configuration.md")
	assert.Contains(t, cfg, "`links.rate_per_host`")
	assert.Contains(t, cfg, "`.railcat/state.db`")

	cat := readPage(t, dir, "catalog.md")
	assert.Contains(t, cat, "| `CH` | Switzerland |")
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "railcat lint\n  --links", dedent("  railcat lint\n    --links\n"))
}
