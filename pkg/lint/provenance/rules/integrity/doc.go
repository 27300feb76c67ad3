// Package integrity provides catalog integrity rules.
//
//   - CR01: Missing License - Record without a usable license reference
//   - CR02: Missing Source - Record without a source URL
//   - CR03: Missing Filename - Record without a filename
//   - CJ01: Invalid Jurisdiction - Jurisdiction is not one of DE, CH, FR, UK, US
//   - CD01: Conflicting License - Same filename claimed with different licenses
//   - CD02: Duplicate Record - Same filename listed twice with identical terms
//   - CD03: Conflicting Jurisdiction - Same filename claimed by two jurisdictions
//   - CS01: Submodule Repository - Submodule without a repository URL
package integrity

import (
	"strings"

	"github.com/tc-opendata/railcat/pkg/core"
)

// subjectOf names a record for diagnostics, falling back to its position.
func subjectOf(d core.Dataset) string {
	if name := strings.TrimSpace(d.Filename); name != "" {
		return name
	}
	return "(unnamed record)"
}
