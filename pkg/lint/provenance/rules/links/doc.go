// Package links provides URL rules for the catalog.
//
//   - CU01: Malformed URL - Source, license or repository URL is not an absolute http(s) URL
//   - CU02: Unreachable URL - Link check reported a failure (only with link results)
//   - CU03: Source Host Mismatch - Source URL is not hosted by the jurisdiction's publisher
package links

import (
	"fmt"
	"strings"

	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

// ref is one URL-valued field in the catalog.
type ref struct {
	URL     string
	Subject string
	Field   string
	Index   int
}

// refs collects every non-empty URL field in document order. Submodules are
// indexed after the dataset records.
func refs(ctx *provenance.Context) []ref {
	var out []ref
	datasets := ctx.Datasets()

	for i, d := range datasets {
		if u := strings.TrimSpace(d.SourceURL); u != "" {
			out = append(out, ref{URL: u, Subject: d.Filename, Field: "source_url", Index: i})
		}
		for n, l := range d.Licenses {
			if u := strings.TrimSpace(l.URL); u != "" {
				out = append(out, ref{URL: u, Subject: d.Filename, Field: fmt.Sprintf("licenses[%d].url", n), Index: i})
			}
		}
	}

	for i, s := range ctx.Submodules() {
		subject := "submodule:" + s.Name
		index := len(datasets) + i
		if u := strings.TrimSpace(s.Repository); u != "" {
			out = append(out, ref{URL: u, Subject: subject, Field: "repository", Index: index})
		}
		for n, l := range s.Licenses {
			if u := strings.TrimSpace(l.URL); u != "" {
				out = append(out, ref{URL: u, Subject: subject, Field: fmt.Sprintf("licenses[%d].url", n), Index: index})
			}
		}
	}

	return out
}
