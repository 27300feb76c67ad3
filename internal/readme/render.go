// Package readme renders the catalog into the human-readable README and
// keeps the two in sync.
package readme

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/pkg/core"
)

// GeneratedMarker is the first line of every rendered README.
const GeneratedMarker = "<!-- Generated by railcat from the license catalog. Edit catalog.yaml instead. -->"

//go:embed readme.md.tmpl
var readmeTemplate string

var tmpl = template.Must(template.New("readme").Funcs(template.FuncMap{
	"cell":     cell,
	"licenses": licenseCell,
	"source":   sourceCell,
	"code":     code,
}).Parse(readmeTemplate))

// section is one jurisdiction block of the README.
type section struct {
	Jurisdiction core.Jurisdiction
	Heading      string
	Authority    string
	Datasets     []core.Dataset
	Terms        []core.License // licenses given as text, printed below the table
}

type view struct {
	Marker     string
	Title      string
	Intro      string
	Sections   []section
	Submodules []core.Submodule
}

// Render returns the README Markdown for c. Output is deterministic for a
// given catalog.
func Render(c *catalog.Catalog) ([]byte, error) {
	v := view{
		Marker:     GeneratedMarker,
		Title:      c.Title(),
		Intro:      strings.TrimSpace(c.Intro()),
		Submodules: c.Submodules(),
	}
	if v.Title == "" {
		v.Title = "Data sources"
	}

	for _, j := range c.Jurisdictions() {
		s := section{
			Jurisdiction: j,
			Heading:      heading(j),
			Authority:    j.Authority(),
			Datasets:     c.Filter(j),
		}
		s.Terms = textLicenses(s.Datasets)
		v.Sections = append(v.Sections, s)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("failed to render README: %w", err)
	}
	return normalize(buf.Bytes()), nil
}

func heading(j core.Jurisdiction) string {
	if j == "" {
		return "Unassigned"
	}
	if j.Valid() {
		return fmt.Sprintf("%s (%s)", j.Country(), j)
	}
	return string(j)
}

// textLicenses returns the distinct licenses that carry their terms as text.
func textLicenses(ds []core.Dataset) []core.License {
	seen := make(map[string]bool)
	var out []core.License
	for _, d := range ds {
		for _, l := range d.Licenses {
			text := strings.TrimSpace(l.Text)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, l)
		}
	}
	return out
}

// cell escapes a value for use inside a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

func link(text, url string) string {
	if url == "" {
		return cell(text)
	}
	return fmt.Sprintf("[%s](%s)", cell(text), strings.TrimSpace(url))
}

func licenseCell(ls []core.License) string {
	var parts []string
	for _, l := range ls {
		if l.Empty() {
			continue
		}
		parts = append(parts, link(l.Label(), l.URL))
	}
	if len(parts) == 0 {
		return "_missing_"
	}
	return strings.Join(parts, ", ")
}

func sourceCell(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "_missing_"
	}
	text := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.IndexByte(text, '/'); i > 0 {
		text = text[:i]
	}
	return link(text, raw)
}

// normalize collapses runs of blank lines and ends the document with a
// single newline.
func normalize(b []byte) []byte {
	lines := strings.Split(string(b), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return []byte(strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n")
}
