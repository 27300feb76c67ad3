package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/cli/output"
	"github.com/tc-opendata/railcat/pkg/core"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Show the license and provenance of a data file",
		Long: `Show the catalog record for a data file: its jurisdiction, license
references and where it was obtained.

When a filename is listed more than once the first record wins and a
warning is printed (see rules CD01 to CD03).`,
		Example: `  railcat show bahnhoefe.csv
  railcat show uk_corpus.json -o json`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			c, err := NewCommandContext(&cobra.Command{}).LoadCatalog()
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.Filenames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}
	return cmd
}

func runShow(cmd *cobra.Command, filename string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	c, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	d, err := c.Lookup(filename)
	if err != nil {
		return err
	}
	if n := len(c.LookupAll(filename)); n > 1 {
		r.Warning(fmt.Sprintf("%s is listed %d times; showing the first record", filename, n))
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(d)
	case output.ModeMarkdown:
		showMarkdown(r, d)
	default:
		showText(r, d)
	}
	return nil
}

func showMarkdown(r *output.Renderer, d core.Dataset) {
	r.Println(output.FormatHeader(1, d.Filename))
	r.Println("")
	if d.Title != "" {
		r.Println(output.FormatKeyValue("Title", d.Title))
	}
	r.Println(output.FormatKeyValue("Jurisdiction", jurisdictionTitle(d.Jurisdiction)))
	if d.Publisher != "" {
		r.Println(output.FormatKeyValue("Publisher", d.Publisher))
	}
	r.Println(output.FormatKeyValue("Format", d.Format()))
	r.Println(output.FormatKeyValue("Source", d.SourceURL))
	r.Println("")
	r.Println(output.FormatHeader(2, "Licenses"))
	r.Println("")
	for _, l := range d.Licenses {
		switch {
		case l.URL != "":
			r.Printf("- [%s](%s)\n", l.Label(), l.URL)
		default:
			r.Printf("- %s\n", l.Label())
		}
		if l.Text != "" {
			r.Printf("  > %s\n", l.Text)
		}
	}
	if d.Notes != "" {
		r.Println("")
		r.Println(d.Notes)
	}
}

func showText(r *output.Renderer, d core.Dataset) {
	styles := r.Styles()

	r.Println(styles.Header1.Render(d.Filename))
	if d.Title != "" {
		r.Printf("  %s: %s\n", styles.Bold.Render("Title"), d.Title)
	}
	r.Printf("  %s: %s\n", styles.Bold.Render("Jurisdiction"), jurisdictionTitle(d.Jurisdiction))
	if d.Publisher != "" {
		r.Printf("  %s: %s\n", styles.Bold.Render("Publisher"), d.Publisher)
	}
	r.Printf("  %s: %s\n", styles.Bold.Render("Format"), d.Format())
	r.Printf("  %s: %s\n", styles.Bold.Render("Source"), d.SourceURL)
	r.Println("")
	r.Println(styles.Bold.Render("Licenses"))
	for _, l := range d.Licenses {
		r.Printf("  - %s\n", l.Label())
		if l.URL != "" {
			r.Println(styles.Muted.Render("    " + l.URL))
		}
		if l.Text != "" {
			r.Println(styles.Muted.Render("    " + l.Text))
		}
	}
	if d.Notes != "" {
		r.Println("")
		r.Println(styles.Muted.Render(d.Notes))
	}
}
