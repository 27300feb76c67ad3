package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tc-opendata/railcat/internal/cli"
	"github.com/tc-opendata/railcat/internal/cli/config"
)

// exitBehaviour describes when a command exits non-zero beyond plain errors.
var exitBehaviour = map[string]string{
	"lint":   "Findings at or above `--severity`",
	"links":  "Any URL broken or unreachable",
	"readme": "`--check` finds the README out of date",
}

// generateCLIDocs writes an overview page and one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	commands := documentedCommands(root)

	pages := map[string][]byte{"index.md": cliOverview(root, commands)}
	for _, cmd := range commands {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func documentedCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || !cmd.IsAvailableCommand() {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func cliOverview(root *cobra.Command, commands []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "railcat commands, flags and environment")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", "go install github.com/tc-opendata/railcat/cmd/railcat@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range commands {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name()),
			cleanDescription(cmd.Short),
		})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	flagTable(w, root.PersistentFlags())

	w.Header(2, "Output Formats")
	w.Table([]string{"Value", "Produces"}, [][]string{
		{InlineCode("auto"), "`text` on a terminal, `markdown` when piped"},
		{InlineCode("text"), "Coloured terminal output"},
		{InlineCode("markdown"), "Markdown suitable for pull request comments"},
		{InlineCode("json"), "Machine-readable reports"},
	})

	w.Header(2, "Configuration Sources")
	w.Paragraph(fmt.Sprintf("Settings are layered from defaults, `%s`, %s variables and flags; later sources win. "+
		"See the [configuration reference](/concepts/configuration).",
		config.ConfigFileNames[0], InlineCode(config.EnvPrefix+"*")))

	w.Header(2, "Exit Status")
	exitRows := [][]string{{"any", "Invalid flags, unreadable configuration or catalog"}}
	for _, cmd := range commands {
		if why, ok := exitBehaviour[cmd.Name()]; ok {
			exitRows = append(exitRows, []string{InlineCode(cmd.Name()), why})
		}
	}
	w.Paragraph("Commands exit with status 1 when:")
	w.Table([]string{"Command", "Condition"}, exitRows)

	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, "railcat "+cmd.Name())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.CodeBlock("bash", cmd.UseLine())

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		flagTable(w, cmd.LocalNonPersistentFlags())
	}

	if why, ok := exitBehaviour[cmd.Name()]; ok {
		w.Header(2, "Exit Status")
		w.Paragraph("Exits with status 1 when: " + why + ".")
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	w.Paragraph("Global options are listed in the [CLI reference](/cli/).")
	return w.Bytes()
}

// flagTable lists the visible flags of fs.
func flagTable(w *MarkdownWriter, fs *pflag.FlagSet) {
	var rows [][]string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name = InlineCode("-"+f.Shorthand) + ", " + name
		}
		def := "-"
		if f.DefValue != "" && f.DefValue != "[]" {
			def = InlineCode(f.DefValue)
		}
		rows = append(rows, []string{name, f.Value.Type(), def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Type", "Default", "Description"}, rows)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	for i, l := range lines {
		if len(l) >= prefix && prefix > 0 {
			lines[i] = l[prefix:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
