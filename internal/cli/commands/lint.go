package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/cli/output"
	"github.com/tc-opendata/railcat/internal/linkcheck"
	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
	_ "github.com/tc-opendata/railcat/pkg/lint/provenance/rules" // register catalog rules
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Links    bool     // Check links live and feed CU02
	Cached   bool     // Feed CU02 from the latest stored link check
	Disable  []string // Rule IDs to disable
	Rules    []string // Run only specific rules
	Severity string   // Minimum severity: error, warning, info, hint
}

// lintReport is the JSON shape of a lint run.
type lintReport struct {
	Catalog     string            `json:"catalog"`
	Datasets    int               `json:"datasets"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	Counts      map[string]int    `json:"counts"`
	LinkRunID   string            `json:"link_run_id,omitempty"`
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the catalog for missing or conflicting provenance",
		Long: `Run the integrity rules against the catalog.

Every dataset needs a filename, a known jurisdiction, a license reference and
a source URL; URLs must be well formed and repeated filenames must agree.
Link reachability (CU02) is only checked with --links (live) or --cached
(the latest run saved by 'railcat links --save').

Exits non-zero when issues at or above --severity are found.`,
		Example: `  # Lint the catalog
  railcat lint

  # Include live link checks
  railcat lint --links

  # Use the last saved link check instead
  railcat lint --cached

  # Only run the duplicate rules, reporting info findings too
  railcat lint --rule CD01,CD02,CD03 --severity info`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Links, "links", false, "Check every URL over HTTP")
	cmd.Flags().BoolVar(&opts.Cached, "cached", false, "Use the latest saved link check")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().StringVar(&opts.Severity, "severity", "warning", "Minimum severity: error, warning, info, hint")
	cmd.MarkFlagsMutuallyExclusive("links", "cached")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	threshold, ok := lint.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("invalid severity %q (expected error, warning, info or hint)", opts.Severity)
	}

	lintCfg, err := buildLintConfig(cmdCtx.Cfg, opts.Disable, opts.Rules)
	if err != nil {
		return err
	}

	c, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	links, runID, err := lintLinkResults(cmd.Context(), cmdCtx, c, opts)
	if err != nil {
		return err
	}

	ctx := provenance.NewContext(c.Document(), links)
	diags := provenance.NewAnalyzer(lintCfg).Analyze(ctx)
	diags = lint.FilterBySeverity(diags, threshold)

	report := lintReport{
		Catalog:     c.Path(),
		Datasets:    c.Len(),
		Diagnostics: diags,
		Counts:      map[string]int{},
		LinkRunID:   runID,
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []lint.Diagnostic{}
	}
	for sev, n := range lint.CountBySeverity(diags) {
		report.Counts[sev.String()] = n
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(report); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderLintMarkdown(r, report)
	default:
		renderLintText(r, report)
	}

	if len(diags) > 0 {
		return fmt.Errorf("lint issues found")
	}
	return nil
}

// lintLinkResults returns the link results CU02 should see, if any.
func lintLinkResults(ctx context.Context, cmdCtx *CommandContext, c *catalog.Catalog, opts *LintOptions) ([]core.LinkResult, string, error) {
	switch {
	case opts.Links:
		checker := linkcheck.New(cmdCtx.Cfg.GetLinksConfig(), cmdCtx.Logger)
		results, err := checker.Check(ctx, catalogURLs(c))
		return results, "", err

	case opts.Cached:
		store, cleanup, err := cmdCtx.OpenStore()
		if err != nil {
			return nil, "", err
		}
		defer cleanup()

		run, err := store.GetLatestCheckRun()
		if err != nil {
			return nil, "", err
		}
		if run == nil {
			cmdCtx.Renderer.Warning("no saved link check; run 'railcat links --save' first")
			return nil, "", nil
		}
		cmdCtx.Logger.Debug("using saved link check", slog.String("run_id", run.ID))
		results, err := store.GetLinkResults(run.ID)
		return results, run.ID, err
	}
	return nil, "", nil
}

func catalogURLs(c *catalog.Catalog) []string {
	usages := c.URLs()
	urls := make([]string, 0, len(usages))
	for _, u := range usages {
		urls = append(urls, u.URL)
	}
	return urls
}

func renderLintMarkdown(r *output.Renderer, report lintReport) {
	r.Println(output.FormatHeader(1, "Catalog lint"))
	r.Println("")
	r.Printf("%d datasets checked in `%s`.\n\n", report.Datasets, report.Catalog)

	if len(report.Diagnostics) == 0 {
		r.Println("No issues found.")
		return
	}

	rows := make([][]string, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		rows = append(rows, []string{d.RuleID, d.Severity.String(), diagnosticLocation(d), d.Message})
	}
	r.Table([]string{"Rule", "Severity", "Location", "Message"}, rows)
	r.Println(summarizeCounts(report.Counts))
}

func renderLintText(r *output.Renderer, report lintReport) {
	styles := r.Styles()

	if len(report.Diagnostics) == 0 {
		r.Success(fmt.Sprintf("No issues found in %d datasets", report.Datasets))
		return
	}

	for _, d := range report.Diagnostics {
		sev := getSeverityStyle(styles, d.Severity).Render(fmt.Sprintf("%-7s", d.Severity))
		r.Printf("%s %s %s\n", sev, styles.Bold.Render(d.RuleID), diagnosticLocation(d))
		r.Println("        " + d.Message)
	}
	r.Println("")
	r.Println(styles.Muted.Render(summarizeCounts(report.Counts)))
}

func diagnosticLocation(d lint.Diagnostic) string {
	loc := d.Subject
	if loc == "" {
		loc = "catalog"
	}
	if d.Field != "" {
		loc += "." + d.Field
	}
	return loc
}

func summarizeCounts(counts map[string]int) string {
	parts := make([]string, 0, 4)
	for _, sev := range []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo, core.SeverityHint} {
		if n := counts[sev.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, plural(sev.String(), n)))
		}
	}
	return strings.Join(parts, ", ")
}

func plural(word string, n int) string {
	if n == 1 || word == "info" {
		return word
	}
	return word + "s"
}

func getSeverityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	case core.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}
