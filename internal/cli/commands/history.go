package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/cli/output"
	"github.com/tc-opendata/railcat/pkg/core"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show saved link checks",
		Long: `List the link checks saved with 'railcat links --save', newest first.
Pass a run ID to see every URL result of that run.`,
		Example: `  railcat history
  railcat history --limit 5
  railcat history 3f0c6a52-2b1e-4c4f-9d43-1c3e1b0c8a77`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRun(cmd, args[0])
			}
			return listRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")

	return cmd
}

func listRuns(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListCheckRuns(limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*core.CheckRun{}
		}
		return r.JSON(runs)
	}

	r.Header(1, "Link check history")
	if len(runs) == 0 {
		r.Println("No saved link checks. Run 'railcat links --save' first.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			string(run.Status),
			strconv.Itoa(run.URLCount),
			strconv.Itoa(run.FailedCount),
		})
	}
	r.Table([]string{"Run", "Started", "Status", "URLs", "Failed"}, rows)
	return nil
}

func showRun(cmd *cobra.Command, id string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := store.GetCheckRun(id)
	if err != nil {
		return err
	}
	results, err := store.GetLinkResults(id)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if results == nil {
			results = []core.LinkResult{}
		}
		return r.JSON(map[string]any{"run": run, "results": results})
	}

	r.Header(1, "Link check "+run.ID)
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("Catalog", run.CatalogPath))
		r.Println(output.FormatKeyValue("Status", string(run.Status)))
		r.Println(output.FormatKeyValue("Started", run.StartedAt.Local().Format(time.DateTime)))
		r.Println(output.FormatKeyValue("URLs", fmt.Sprintf("%d (%d failed)", run.URLCount, run.FailedCount)))
		if run.Error != "" {
			r.Println(output.FormatKeyValue("Error", run.Error))
		}
		r.Println("")
	} else {
		r.Printf("  %s, %d URLs, %d failed\n", run.Status, run.URLCount, run.FailedCount)
		if run.Error != "" {
			r.Error(run.Error)
		}
	}

	for _, res := range results {
		r.StatusLine(res.URL, linkStatusName(res.Status), linkDetail(res, nil))
	}
	return nil
}
