package core

import (
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// Jurisdiction
// =============================================================================

// Jurisdiction identifies the national data provider whose terms govern a dataset.
type Jurisdiction string

// Known jurisdictions.
const (
	JurisdictionDE Jurisdiction = "DE"
	JurisdictionCH Jurisdiction = "CH"
	JurisdictionFR Jurisdiction = "FR"
	JurisdictionUK Jurisdiction = "UK"
	JurisdictionUS Jurisdiction = "US"
)

// jurisdictionInfo describes the authority behind a jurisdiction.
type jurisdictionInfo struct {
	Country   string
	Authority string
}

var jurisdictions = map[Jurisdiction]jurisdictionInfo{
	JurisdictionDE: {Country: "Germany", Authority: "Deutsche Bahn"},
	JurisdictionCH: {Country: "Switzerland", Authority: "SBB"},
	JurisdictionFR: {Country: "France", Authority: "SNCF"},
	JurisdictionUK: {Country: "United Kingdom", Authority: "Network Rail"},
	JurisdictionUS: {Country: "United States", Authority: "Amtrak (via Wikipedia)"},
}

// AllJurisdictions returns the known jurisdictions in README order.
func AllJurisdictions() []Jurisdiction {
	return []Jurisdiction{JurisdictionDE, JurisdictionCH, JurisdictionFR, JurisdictionUK, JurisdictionUS}
}

// ParseJurisdiction normalizes s and reports whether it names a known jurisdiction.
// "GB" is accepted as an alias for UK.
func ParseJurisdiction(s string) (Jurisdiction, bool) {
	j := Jurisdiction(strings.ToUpper(strings.TrimSpace(s)))
	if j == "GB" {
		j = JurisdictionUK
	}
	_, ok := jurisdictions[j]
	return j, ok
}

// Valid reports whether j is one of the known jurisdictions.
func (j Jurisdiction) Valid() bool {
	_, ok := jurisdictions[j]
	return ok
}

// Country returns the country name, or the raw code when unknown.
func (j Jurisdiction) Country() string {
	if info, ok := jurisdictions[j]; ok {
		return info.Country
	}
	return string(j)
}

// Authority returns the data-provider authority, or "" when unknown.
func (j Jurisdiction) Authority() string {
	return jurisdictions[j].Authority
}

// =============================================================================
// License
// =============================================================================

// License is a single license reference: a URL to the terms, the terms
// themselves as text, or both.
type License struct {
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`     // e.g. "CC-BY-4.0"
	Name string `yaml:"name,omitempty" json:"name,omitempty"` // e.g. "Creative Commons Attribution 4.0"
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
}

// Empty reports whether the reference carries neither a URL nor text.
func (l License) Empty() bool {
	return strings.TrimSpace(l.URL) == "" && strings.TrimSpace(l.Text) == ""
}

// Label returns the best human-readable name for the license.
func (l License) Label() string {
	switch {
	case l.Name != "":
		return l.Name
	case l.ID != "":
		return l.ID
	case l.URL != "":
		return l.URL
	default:
		return "custom terms"
	}
}

// key identifies a license for comparison. ID and URL are case-insensitive.
func (l License) key() string {
	return strings.ToLower(strings.TrimSpace(l.ID)) + "|" +
		strings.TrimRight(strings.ToLower(strings.TrimSpace(l.URL)), "/") + "|" +
		strings.TrimSpace(l.Text)
}

// SameLicenses reports whether a and b reference the same set of licenses,
// ignoring order and display names.
func SameLicenses(a, b []License) bool {
	ka := licenseKeys(a)
	kb := licenseKeys(b)
	if len(ka) != len(kb) {
		return false
	}
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}

func licenseKeys(ls []License) []string {
	seen := make(map[string]bool, len(ls))
	keys := make([]string, 0, len(ls))
	for _, l := range ls {
		k := l.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// Dataset
// =============================================================================

// Dataset is one catalog record: a referenced data file, the jurisdiction whose
// terms apply, its license references and where it was obtained.
type Dataset struct {
	Filename     string       `yaml:"filename" json:"filename"`
	Jurisdiction Jurisdiction `yaml:"jurisdiction" json:"jurisdiction"`
	Licenses     []License    `yaml:"licenses" json:"licenses"`
	SourceURL    string       `yaml:"source_url" json:"source_url"`

	Title     string `yaml:"title,omitempty" json:"title,omitempty"`
	Publisher string `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	FileType  string `yaml:"format,omitempty" json:"format,omitempty"`
	Notes     string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Format returns the declared format or, when unset, the filename extension.
func (d *Dataset) Format() string {
	if d.FileType != "" {
		return strings.ToLower(d.FileType)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Filename)), ".")
}

// HasLicense reports whether at least one non-empty license reference exists.
func (d *Dataset) HasLicense() bool {
	for _, l := range d.Licenses {
		if !l.Empty() {
			return true
		}
	}
	return false
}

// DisplayName returns the title, falling back to the filename.
func (d *Dataset) DisplayName() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Filename
}

// =============================================================================
// Submodule and Catalog
// =============================================================================

// Submodule is an external repository expected to contain data files.
type Submodule struct {
	Name       string    `yaml:"name" json:"name"`
	Path       string    `yaml:"path,omitempty" json:"path,omitempty"`
	Repository string    `yaml:"repository" json:"repository"`
	Licenses   []License `yaml:"licenses,omitempty" json:"licenses,omitempty"`
	Notes      string    `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// CatalogVersion is the catalog document version this build understands.
const CatalogVersion = 1

// Catalog is the full license/provenance document.
type Catalog struct {
	Version    int         `yaml:"version" json:"version"`
	Title      string      `yaml:"title,omitempty" json:"title,omitempty"`
	Intro      string      `yaml:"intro,omitempty" json:"intro,omitempty"`
	Datasets   []Dataset   `yaml:"datasets" json:"datasets"`
	Submodules []Submodule `yaml:"submodules,omitempty" json:"submodules,omitempty"`
}
