package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/cli/output"
	"github.com/tc-opendata/railcat/pkg/core"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var jurisdiction string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the datasets in the catalog",
		Long: `List every dataset record with its jurisdiction, license and source.

Output adapts to environment:
  - Terminal: Styled tables grouped by jurisdiction
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all datasets
  railcat list

  # Only Swiss datasets
  railcat list --jurisdiction CH

  # As JSON
  railcat list -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, jurisdiction)
		},
	}

	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "Only list datasets of this jurisdiction (DE, CH, FR, UK, US)")
	_ = cmd.RegisterFlagCompletionFunc("jurisdiction", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		codes := make([]string, 0, 5)
		for _, j := range core.AllJurisdictions() {
			codes = append(codes, string(j))
		}
		return codes, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runList(cmd *cobra.Command, jurisdiction string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	c, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	groups := c.Jurisdictions()
	if jurisdiction != "" {
		j, ok := core.ParseJurisdiction(jurisdiction)
		if !ok {
			return fmt.Errorf("unknown jurisdiction %q (expected one of DE, CH, FR, UK, US)", jurisdiction)
		}
		groups = []core.Jurisdiction{j}
	}

	if r.EffectiveMode() == output.ModeJSON {
		records := []core.Dataset{}
		for _, j := range groups {
			records = append(records, c.Filter(j)...)
		}
		return r.JSON(records)
	}

	total := 0
	for _, j := range groups {
		total += len(c.Filter(j))
	}
	r.Header(1, fmt.Sprintf("Datasets (%d total)", total))

	for _, j := range groups {
		records := c.Filter(j)
		if len(records) == 0 {
			continue
		}
		r.Header(2, jurisdictionTitle(j))
		rows := make([][]string, 0, len(records))
		for _, d := range records {
			rows = append(rows, []string{d.Filename, licenseSummary(d.Licenses), d.SourceURL})
		}
		r.Table([]string{"Filename", "License", "Source"}, rows)
	}

	if jurisdiction == "" {
		listSubmodules(r, c)
	}
	return nil
}

func listSubmodules(r *output.Renderer, c *catalog.Catalog) {
	subs := c.Submodules()
	if len(subs) == 0 {
		return
	}
	r.Header(2, "Submodules")
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []string{s.Name, s.Path, s.Repository})
	}
	r.Table([]string{"Name", "Path", "Repository"}, rows)
}

func jurisdictionTitle(j core.Jurisdiction) string {
	switch {
	case j == "":
		return "Unassigned"
	case j.Valid():
		return fmt.Sprintf("%s (%s)", j.Country(), j)
	default:
		return string(j)
	}
}

func licenseSummary(ls []core.License) string {
	if len(ls) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(ls))
	for _, l := range ls {
		labels = append(labels, l.Label())
	}
	return strings.Join(labels, ", ")
}
