package provenance

import (
	"strings"

	"github.com/tc-opendata/railcat/pkg/core"
)

// Context provides all data needed for catalog analysis.
type Context struct {
	datasets   []core.Dataset
	submodules []core.Submodule
	links      map[string]core.LinkResult
}

// NewContext creates a new analysis context. links may be nil when no link
// check has been run; rules that need reachability data then stay silent.
func NewContext(doc *core.Catalog, links []core.LinkResult) *Context {
	ctx := &Context{}
	if doc != nil {
		ctx.datasets = doc.Datasets
		ctx.submodules = doc.Submodules
	}
	if links != nil {
		ctx.links = make(map[string]core.LinkResult, len(links))
		for _, r := range links {
			ctx.links[strings.TrimSpace(r.URL)] = r
		}
	}
	return ctx
}

// Datasets returns the catalog records in document order.
func (c *Context) Datasets() []core.Dataset {
	return c.datasets
}

// Submodules returns the catalog submodules.
func (c *Context) Submodules() []core.Submodule {
	return c.submodules
}

// HasLinkResults reports whether link-check data is available.
func (c *Context) HasLinkResults() bool {
	return c.links != nil
}

// Link returns the check result for a URL.
func (c *Context) Link(url string) (core.LinkResult, bool) {
	r, ok := c.links[strings.TrimSpace(url)]
	return r, ok
}
