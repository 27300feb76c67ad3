package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tc-opendata/railcat/internal/cli/config"
	"github.com/tc-opendata/railcat/pkg/core"
)

// generateSchemaDocs generates the configuration and catalog format pages.
func generateSchemaDocs(outDir string) error {
	log.Printf("Generating schema docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	if err := generateCatalogDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate catalog.md: %w", err)
	}
	log.Printf("  Generated catalog.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "lint", "links", "serve"
}

// getConfigSchema returns the configuration schema definition.
// It mirrors the koanf keys in internal/cli/config.
func getConfigSchema() []ConfigField {
	links := core.DefaultLinksConfig()
	return []ConfigField{
		{Name: "catalog_path", Type: "string", Default: config.DefaultCatalogFile, Description: "Catalog file; the built-in catalog is used when none exists", Category: "project"},
		{Name: "state_path", Type: "string", Default: config.DefaultStateFile, Description: "SQLite database holding link-check history", Category: "project"},
		{Name: "readme_path", Type: "string", Default: config.DefaultReadmeFile, Description: "README rendered from the catalog", Category: "project"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown or json", Category: "project"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging on stderr", Category: "project"},

		{Name: "lint.disabled", Type: "[]string", Description: "Rule IDs that never run", Category: "lint"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Severity override per rule ID", Category: "lint"},
		{Name: "lint.rules", Type: "map[string]map", Description: "Rule-specific options per rule ID", Category: "lint"},

		{Name: "links.timeout", Type: "duration", Default: links.Timeout.String(), Description: "Timeout for a single request", Category: "links"},
		{Name: "links.concurrency", Type: "int", Default: fmt.Sprint(links.Concurrency), Description: "URLs checked in parallel", Category: "links"},
		{Name: "links.rate_per_host", Type: "float", Default: fmt.Sprint(links.RatePerHost), Description: "Requests per second sent to one host", Category: "links"},
		{Name: "links.retries", Type: "int", Default: fmt.Sprint(links.Retries), Description: "Retries for transport errors, 429 and 5xx answers", Category: "links"},
		{Name: "links.user_agent", Type: "string", Default: links.UserAgent, Description: "User-Agent header sent with every request", Category: "links"},

		{Name: "serve.addr", Type: "string", Default: config.DefaultServeAddr, Description: "Listen address for `railcat serve`", Category: "serve"},
		{Name: "serve.allowed_origins", Type: "[]string", Description: "CORS origins allowed to call the JSON API", Category: "serve"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "railcat configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("railcat is configured via `railcat.yaml` in your project root. " +
		"The file is searched upward from the working directory; relative paths resolve against the directory that holds it.")

	sections := []struct {
		category string
		title    string
		intro    string
	}{
		{"project", "Project Settings", "Paths and output:"},
		{"lint", "Lint", "Rule selection and options for `railcat lint`:"},
		{"links", "Link Checker", "Settings for `railcat links` and `railcat lint --links`:"},
		{"serve", "HTTP View", "Settings for `railcat serve`:"},
	}

	fields := getConfigSchema()
	for _, sec := range sections {
		w.Header(2, sec.title)
		w.Paragraph(sec.intro)

		var rows [][]string
		for _, f := range fields {
			if f.Category != sec.category {
				continue
			}
			defVal := f.Default
			if defVal == "" {
				defVal = "-"
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(defVal), f.Description})
		}
		w.Table([]string{"Field", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every key can be set with a %s variable. A double underscore separates nested keys:",
		InlineCode(config.EnvPrefix+"*")))
	w.CodeBlock("bash", config.EnvPrefix+"LINKS__RETRIES=0 railcat links")

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# railcat.yaml
catalog_path: catalog.yaml
readme_path: README.md
state_path: .railcat/state.db

lint:
  disabled: [CD02]
  severity:
    CU03: error
  rules:
    CU01:
      require_https: true
    CU03:
      hosts:
        UK: [networkrail.co.uk, wiki.openraildata.com]

links:
  timeout: 10s
  concurrency: 4
  rate_per_host: 2
  retries: 3

serve:
  addr: 127.0.0.1:8080
  allowed_origins: ["https://traincompany.example"]`)

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}

// generateCatalogDoc generates the catalog format page.
func generateCatalogDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Catalog Format", "Structure of catalog.yaml")
	w.GeneratedMarker()

	w.Header(1, "Catalog Format")
	w.Paragraph("`catalog.yaml` maps every data file to its jurisdiction, license references and source. " +
		"railcat never opens the data files themselves.")

	w.Header(2, "Dataset Record")
	w.Table(
		[]string{"Field", "Required", "Description"},
		[][]string{
			{InlineCode("filename"), "Yes", "Name of the referenced file"},
			{InlineCode("jurisdiction"), "Yes", "Publishing country"},
			{InlineCode("licenses"), "Yes", "One or more license references with `id`, `name`, `url` and/or `text`"},
			{InlineCode("source_url"), "Yes", "Where the data was obtained"},
			{InlineCode("title"), "No", "Human-readable title"},
			{InlineCode("publisher"), "No", "Publishing organisation"},
			{InlineCode("format"), "No", "File format; derived from the extension when omitted"},
			{InlineCode("notes"), "No", "Free-form remarks rendered into the README"},
		},
	)

	w.Header(2, "Jurisdictions")
	var rows [][]string
	for _, j := range core.AllJurisdictions() {
		rows = append(rows, []string{InlineCode(string(j)), j.Country(), j.Authority()})
	}
	w.Table([]string{"Code", "Country", "Authority"}, rows)

	w.Header(2, "Submodules")
	w.Paragraph("External repositories expected to contain further data files are listed under `submodules` " +
		"with `name`, `path`, `repository` and optional `licenses`.")

	return os.WriteFile(filepath.Join(outDir, "catalog.md"), w.Bytes(), 0600)
}
