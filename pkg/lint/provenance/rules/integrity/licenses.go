package integrity

import (
	"strings"

	"github.com/tc-opendata/railcat/pkg/core"
)

func sameLicenses(a, b core.Dataset) bool {
	return core.SameLicenses(a.Licenses, b.Licenses)
}

func licenseLabels(ls []core.License) string {
	if len(ls) == 0 {
		return "none"
	}
	labels := make([]string, len(ls))
	for i, l := range ls {
		labels[i] = l.Label()
	}
	return strings.Join(labels, ", ")
}
