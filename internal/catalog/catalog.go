package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tc-opendata/railcat/pkg/core"
)

// ErrNotFound is returned when no record exists for a filename.
var ErrNotFound = errors.New("dataset not found")

// Catalog is a loaded, immutable catalog document with lookup indexes.
// It is safe for concurrent readers.
type Catalog struct {
	doc    *core.Catalog
	path   string
	byName map[string][]int // filename -> record indexes, in document order
}

// New wraps a decoded document. path is informational.
func New(doc *core.Catalog, path string) *Catalog {
	if doc == nil {
		doc = &core.Catalog{Version: core.CatalogVersion}
	}
	c := &Catalog{
		doc:    doc,
		path:   path,
		byName: make(map[string][]int, len(doc.Datasets)),
	}
	for i, d := range doc.Datasets {
		name := strings.TrimSpace(d.Filename)
		c.byName[name] = append(c.byName[name], i)
	}
	return c
}

// Path returns where the catalog was loaded from.
func (c *Catalog) Path() string { return c.path }

// Title returns the catalog title.
func (c *Catalog) Title() string { return c.doc.Title }

// Intro returns the Markdown introduction paragraph.
func (c *Catalog) Intro() string { return c.doc.Intro }

// Len returns the number of dataset records.
func (c *Catalog) Len() int { return len(c.doc.Datasets) }

// Document returns a deep copy of the underlying document.
func (c *Catalog) Document() *core.Catalog {
	cp := *c.doc
	cp.Datasets = c.Records()
	cp.Submodules = c.Submodules()
	return &cp
}

// Records returns a copy of all dataset records in document order.
func (c *Catalog) Records() []core.Dataset {
	out := make([]core.Dataset, len(c.doc.Datasets))
	for i, d := range c.doc.Datasets {
		out[i] = copyDataset(d)
	}
	return out
}

// Submodules returns a copy of the submodule list.
func (c *Catalog) Submodules() []core.Submodule {
	out := make([]core.Submodule, len(c.doc.Submodules))
	for i, s := range c.doc.Submodules {
		s.Licenses = append([]core.License(nil), s.Licenses...)
		out[i] = s
	}
	return out
}

// Lookup returns the first record for filename.
func (c *Catalog) Lookup(filename string) (core.Dataset, error) {
	idx, ok := c.byName[strings.TrimSpace(filename)]
	if !ok || len(idx) == 0 {
		return core.Dataset{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return copyDataset(c.doc.Datasets[idx[0]]), nil
}

// LookupAll returns every record claiming filename, in document order.
func (c *Catalog) LookupAll(filename string) []core.Dataset {
	idx := c.byName[strings.TrimSpace(filename)]
	out := make([]core.Dataset, 0, len(idx))
	for _, i := range idx {
		out = append(out, copyDataset(c.doc.Datasets[i]))
	}
	return out
}

// Filter returns the records of one jurisdiction in document order.
func (c *Catalog) Filter(j core.Jurisdiction) []core.Dataset {
	var out []core.Dataset
	for _, d := range c.doc.Datasets {
		if d.Jurisdiction == j {
			out = append(out, copyDataset(d))
		}
	}
	return out
}

// Jurisdictions returns the jurisdictions present in the catalog: known ones
// in canonical order, followed by unknown codes sorted alphabetically.
func (c *Catalog) Jurisdictions() []core.Jurisdiction {
	present := make(map[core.Jurisdiction]bool)
	for _, d := range c.doc.Datasets {
		present[d.Jurisdiction] = true
	}

	var out []core.Jurisdiction
	for _, j := range core.AllJurisdictions() {
		if present[j] {
			out = append(out, j)
			delete(present, j)
		}
	}
	var unknown []core.Jurisdiction
	for j := range present {
		unknown = append(unknown, j)
	}
	sort.Slice(unknown, func(i, k int) bool { return unknown[i] < unknown[k] })
	return append(out, unknown...)
}

// Filenames returns the distinct, non-empty filenames sorted alphabetically.
func (c *Catalog) Filenames() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// URLRef records where a URL appears in the catalog.
type URLRef struct {
	Owner string // dataset filename or "submodule:<name>"
	Field string // source_url, license, repository
}

// URLUsage is a distinct URL and every place that references it.
type URLUsage struct {
	URL  string
	Refs []URLRef
}

// URLs returns every distinct non-empty URL in the catalog, sorted.
func (c *Catalog) URLs() []URLUsage {
	refs := make(map[string][]URLRef)
	add := func(raw, owner, field string) {
		u := strings.TrimSpace(raw)
		if u == "" {
			return
		}
		refs[u] = append(refs[u], URLRef{Owner: owner, Field: field})
	}

	for _, d := range c.doc.Datasets {
		add(d.SourceURL, d.Filename, "source_url")
		for _, l := range d.Licenses {
			add(l.URL, d.Filename, "license")
		}
	}
	for _, s := range c.doc.Submodules {
		owner := "submodule:" + s.Name
		add(s.Repository, owner, "repository")
		for _, l := range s.Licenses {
			add(l.URL, owner, "license")
		}
	}

	out := make([]URLUsage, 0, len(refs))
	for u, r := range refs {
		out = append(out, URLUsage{URL: u, Refs: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

func copyDataset(d core.Dataset) core.Dataset {
	d.Licenses = append([]core.License(nil), d.Licenses...)
	return d
}
