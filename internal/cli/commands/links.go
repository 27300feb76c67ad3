package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/cli/output"
	"github.com/tc-opendata/railcat/internal/linkcheck"
	"github.com/tc-opendata/railcat/pkg/core"
)

// LinksOptions holds options for the links command.
type LinksOptions struct {
	Save bool // Record the run in the state database
	All  bool // Also print links that resolved
}

// NewLinksCommand creates the links command.
func NewLinksCommand() *cobra.Command {
	opts := &LinksOptions{}
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Check that every catalog URL still resolves",
		Long: `Request every distinct source, license and submodule URL in the catalog.

Each URL is tried with HEAD, falling back to GET when the server refuses HEAD.
Requests are rate limited per host and retried with backoff on network errors,
429 and 5xx responses. Tune this in the links section of railcat.yaml.

With --save the results are stored in the state database, where
'railcat lint --cached' and 'railcat history' can read them.

Exits non-zero when a URL is broken or unreachable.`,
		Example: `  # Check links
  railcat links

  # Check and record the run
  railcat links --save

  # Show every URL, not only failures
  railcat links --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLinks(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Save, "save", false, "Save results to the state database")
	cmd.Flags().BoolVar(&opts.All, "all", false, "List every URL, including working ones")

	return cmd
}

func runLinks(cmd *cobra.Command, opts *LinksOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	c, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	var (
		store   core.Store
		run     *core.CheckRun
		cleanup = func() {}
	)
	if opts.Save {
		s, closeStore, err := cmdCtx.OpenStore()
		if err != nil {
			return err
		}
		store, cleanup = s, closeStore
		run, err = store.CreateCheckRun(c.Path())
		if err != nil {
			cleanup()
			return err
		}
	}
	defer cleanup()

	checker := linkcheck.New(cmdCtx.Cfg.GetLinksConfig(), cmdCtx.Logger)
	results, checkErr := checker.Check(cmd.Context(), catalogURLs(c))

	if run != nil {
		if err := recordRun(store, run.ID, results, checkErr); err != nil {
			return err
		}
		cmdCtx.Logger.Debug("saved link check", slog.String("run_id", run.ID))
	}
	if checkErr != nil {
		return checkErr
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := map[string]any{"results": results, "failed": failed}
		if run != nil {
			out["run_id"] = run.ID
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	default:
		renderLinkResults(r, c, results, opts.All)
		if run != nil {
			r.Muted("Saved as run " + run.ID)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d links failed", failed, len(results))
	}
	return nil
}

func recordRun(store core.Store, runID string, results []core.LinkResult, checkErr error) error {
	if checkErr != nil {
		return store.CompleteCheckRun(runID, core.CheckRunFailed, checkErr.Error())
	}
	if err := store.SaveLinkResults(runID, results); err != nil {
		_ = store.CompleteCheckRun(runID, core.CheckRunFailed, err.Error())
		return err
	}
	return store.CompleteCheckRun(runID, core.CheckRunCompleted, "")
}

func renderLinkResults(r *output.Renderer, c *catalog.Catalog, results []core.LinkResult, all bool) {
	refs := make(map[string][]string)
	for _, u := range c.URLs() {
		for _, ref := range u.Refs {
			refs[u.URL] = append(refs[u.URL], ref.Owner)
		}
	}

	r.Header(1, fmt.Sprintf("Link check (%d URLs)", len(results)))
	shown := 0
	for _, res := range results {
		if !all && !res.Failed() {
			continue
		}
		shown++
		r.StatusLine(res.URL, linkStatusName(res.Status), linkDetail(res, refs[res.URL]))
	}
	if shown == 0 {
		r.Success("All links resolved")
	}
}

func linkStatusName(s core.LinkStatus) string {
	switch s {
	case core.LinkStatusOK:
		return "success"
	case core.LinkStatusBroken, core.LinkStatusUnreachable:
		return "failed"
	default:
		return "skipped"
	}
}

func linkDetail(res core.LinkResult, owners []string) string {
	var parts []string
	switch {
	case res.StatusCode != 0:
		parts = append(parts, fmt.Sprintf("HTTP %d", res.StatusCode))
	case res.Error != "":
		parts = append(parts, res.Error)
	}
	if len(owners) > 0 {
		parts = append(parts, "used by "+strings.Join(dedupeStrings(owners), ", "))
	}
	return strings.Join(parts, "; ")
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
