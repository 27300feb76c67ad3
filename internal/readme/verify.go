package readme

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tc-opendata/railcat/internal/catalog"
)

// Drift describes how an existing README differs from the rendered catalog.
type Drift struct {
	Line     int    // first differing line, 1-based
	Want     string // rendered line
	Got      string // line in the existing README
	Missing  bool   // README does not exist
	Manual   bool   // README lacks the generated marker
	Expected []byte // the rendered README
}

// String describes the drift in one line.
func (d *Drift) String() string {
	switch {
	case d.Missing:
		return "README does not exist"
	case d.Manual:
		return "README was not generated by railcat (marker line missing)"
	default:
		return fmt.Sprintf("README is out of date at line %d: want %q, got %q", d.Line, d.Want, d.Got)
	}
}

// Verify renders c and compares it with existing. It returns nil when the
// README is up to date.
func Verify(c *catalog.Catalog, existing []byte) (*Drift, error) {
	want, err := Render(c)
	if err != nil {
		return nil, err
	}
	return compare(want, existing), nil
}

// VerifyFile is Verify for a README on disk. A missing file is drift, not an error.
func VerifyFile(c *catalog.Catalog, path string) (*Drift, error) {
	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		want, rerr := Render(c)
		if rerr != nil {
			return nil, rerr
		}
		return &Drift{Missing: true, Expected: want}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read README: %w", err)
	}
	return Verify(c, existing)
}

// WriteFile renders c into path.
func WriteFile(c *catalog.Catalog, path string) error {
	out, err := Render(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil { //nolint:gosec // README is meant to be world-readable
		return fmt.Errorf("failed to write README: %w", err)
	}
	return nil
}

func compare(want, got []byte) *Drift {
	got = bytes.ReplaceAll(got, []byte("\r\n"), []byte("\n"))
	if bytes.Equal(want, got) {
		return nil
	}

	wantLines := strings.Split(string(want), "\n")
	gotLines := strings.Split(string(got), "\n")

	if len(gotLines) == 0 || gotLines[0] != GeneratedMarker {
		return &Drift{Manual: true, Line: 1, Want: GeneratedMarker, Got: first(gotLines), Expected: want}
	}

	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		w, g := at(wantLines, i), at(gotLines, i)
		if w != g || i >= len(wantLines) || i >= len(gotLines) {
			return &Drift{Line: i + 1, Want: w, Got: g, Expected: want}
		}
	}
	return nil
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

func first(lines []string) string {
	return at(lines, 0)
}
