// Package catalog loads and queries the license/provenance catalog.
//
// The catalog is a hand-authored YAML document. A default copy is embedded into
// the binary; a project may point railcat at its own file instead. Loading is
// strict: unknown fields fail the YAML decode, and the document must satisfy the
// embedded JSON Schema. Content problems (missing licenses, bad jurisdictions,
// conflicting duplicates) are left to the lint rules so they are reported per
// record instead of aborting the load.
package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/tc-opendata/railcat/pkg/core"
)

//go:embed data/catalog.yaml data/catalog.schema.json
var dataFS embed.FS

const (
	defaultCatalogFile = "data/catalog.yaml"
	schemaFile         = "data/catalog.schema.json"
	schemaURL          = "https://railcat.local/catalog.schema.json"

	// EmbeddedPath is reported as the path of the built-in catalog.
	EmbeddedPath = "<embedded>"
)

var (
	compiledSchema *jsonschema.Schema
	schemaErr      error
	schemaOnce     sync.Once
)

// schema compiles the embedded JSON Schema once.
func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := dataFS.ReadFile(schemaFile)
		if err != nil {
			schemaErr = fmt.Errorf("failed to read catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("catalog schema load failed: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("catalog schema compile failed: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// DefaultYAML returns the embedded catalog document.
func DefaultYAML() []byte {
	data, err := dataFS.ReadFile(defaultCatalogFile)
	if err != nil {
		// The file is compiled into the binary; a read failure is a build defect.
		panic(fmt.Sprintf("embedded catalog missing: %v", err))
	}
	return data
}

// LoadDefault parses the embedded catalog.
func LoadDefault() (*Catalog, error) {
	return Parse(DefaultYAML(), EmbeddedPath)
}

// Load reads and parses the catalog at path. An empty path loads the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" || path == EmbeddedPath {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("catalog file does not exist: %s\nHint: run 'railcat init' or set catalog_path in railcat.yaml", path)
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a catalog document and validates its structure.
// path is only used for error messages and Catalog.Path.
func Parse(data []byte, path string) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	// Decode with strict mode to reject unknown fields
	var doc core.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	return New(&doc, path), nil
}

// validateSchema checks the document against the embedded JSON Schema.
// YAML is converted to JSON first so the validator sees plain JSON values.
func validateSchema(data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("catalog is not representable as JSON: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(asJSON))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to re-read catalog: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("schema validation failed: %s", flattenValidation(verr))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// flattenValidation renders the leaf causes of a validation error on one line each.
func flattenValidation(verr *jsonschema.ValidationError) string {
	var lines []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return strings.Join(lines, "; ")
}
