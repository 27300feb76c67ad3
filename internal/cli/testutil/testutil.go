// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/tc-opendata/railcat/internal/cli/output"
)

// SampleCatalog is a small valid catalog covering two jurisdictions and a submodule.
const SampleCatalog = `version: 1
title: Test data
intro: Files used by the tests.
datasets:
  - filename: bahnhoefe.csv
    jurisdiction: DE
    title: Stationsdaten
    source_url: https://data.deutschebahn.com/dataset/data-stationsdaten.html
    licenses:
      - id: CC-BY-4.0
        name: Creative Commons Attribution 4.0 International
        url: https://creativecommons.org/licenses/by/4.0/
  - filename: sbb_didok.csv
    jurisdiction: CH
    source_url: https://data.sbb.ch/explore/dataset/dienststellen-gemass-opentransportdataswiss/
    licenses:
      - id: SBB-OD
        name: SBB Open Data terms
        url: https://data.sbb.ch/page/licence/
submodules:
  - name: trainline-stations
    path: stations
    repository: https://github.com/trainline-eu/stations
`

// BrokenCatalog is schema-valid but fails the integrity rules: the second
// record has no source URL and a lowercase jurisdiction.
const BrokenCatalog = `version: 1
datasets:
  - filename: bahnhoefe.csv
    jurisdiction: DE
    source_url: https://data.deutschebahn.com/dataset/data-stationsdaten.html
    licenses:
      - url: https://creativecommons.org/licenses/by/4.0/
  - filename: naptan.csv
    jurisdiction: uk
    source_url: ""
    licenses:
      - text: Contains public sector information licensed under the Open Government Licence v3.0.
`

// SetupTestProject creates a temporary project with railcat.yaml and the
// given catalog. It returns the project directory.
func SetupTestProject(t *testing.T, catalogYAML string) string {
	t.Helper()

	tmpDir := t.TempDir()

	config := `catalog_path: catalog.yaml
state_path: .railcat/state.db
readme_path: README.md
links:
  timeout: 2s
  retries: 0
`
	if err := os.WriteFile(filepath.Join(tmpDir, "railcat.yaml"), []byte(config), 0o600); err != nil {
		t.Fatalf("failed to create railcat.yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "catalog.yaml"), []byte(catalogYAML), 0o600); err != nil {
		t.Fatalf("failed to create catalog.yaml: %v", err)
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
