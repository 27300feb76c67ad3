package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/cli/output"
	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
	_ "github.com/tc-opendata/railcat/pkg/lint/provenance/rules" // register catalog rules
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Verbose bool   // Show full documentation
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List the catalog integrity rules with their documentation.

Rules are organized by group (integrity, links). Use --verbose to see the
full documentation including examples and fix guidance.`,
		Example: `  # List all rules
  railcat rules

  # Show details for a specific rule
  railcat rules CU03

  # Only link rules
  railcat rules --group links`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := NewCommandContext(cmd).Renderer

	rules := provenance.AllRuleInfo()
	if opts.Group != "" {
		var filtered []core.RuleInfo
		for _, rule := range rules {
			if rule.Group == opts.Group {
				filtered = append(filtered, rule)
			}
		}
		rules = filtered
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if rules == nil {
			rules = []core.RuleInfo{}
		}
		return r.JSON(map[string]any{"rules": rules, "count": len(rules)})
	case output.ModeMarkdown:
		listRulesMarkdown(r, rules, opts.Verbose)
	default:
		listRulesText(r, rules, opts.Verbose)
	}
	return nil
}

func listRulesText(r *output.Renderer, rules []core.RuleInfo, verbose bool) {
	styles := r.Styles()
	r.Header(1, fmt.Sprintf("Lint rules (%d)", len(rules)))

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println("")
			r.Println(styles.Header2.Render(output.Title(currentGroup)))
		}
		sev := getSeverityStyle(styles, rule.DefaultSeverity).Render(rule.DefaultSeverity.String())
		r.Printf("  %s %-26s %s\n", styles.Bold.Render(rule.ID), rule.Name, sev)
		if verbose {
			r.Println(styles.Muted.Render("       " + rule.Description))
		}
	}
}

func listRulesMarkdown(r *output.Renderer, rules []core.RuleInfo, verbose bool) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Lint rules (%d)", len(rules))))
	r.Println("")

	currentGroup := ""
	var rows [][]string
	flush := func() {
		if len(rows) > 0 {
			r.Table([]string{"ID", "Name", "Severity", "Description"}, rows)
			rows = nil
		}
	}
	for _, rule := range rules {
		if rule.Group != currentGroup {
			flush()
			currentGroup = rule.Group
			r.Println(output.FormatHeader(2, output.Title(currentGroup)))
			r.Println("")
		}
		desc := rule.Description
		if !verbose {
			desc = truncateOneLine(desc, 80)
		}
		rows = append(rows, []string{rule.ID, rule.Name, rule.DefaultSeverity.String(), desc})
	}
	flush()
}

func showRule(cmd *cobra.Command, id string) error {
	r := NewCommandContext(cmd).Renderer

	def, ok := provenance.GetByID(strings.ToUpper(strings.TrimSpace(id)))
	if !ok {
		return fmt.Errorf("unknown rule %q\nHint: run 'railcat rules' to list rules", id)
	}
	rule := def.Info()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rule)
	case output.ModeMarkdown:
		showRuleMarkdown(r, &rule)
	default:
		showRuleText(r, &rule)
	}
	return nil
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule *core.RuleInfo) {
	styles := r.Styles()

	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")
	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), rule.Group)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), rule.DefaultSeverity.String())
	r.Println("")
	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)

	if rule.Rationale != "" {
		r.Println("")
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + rule.Rationale)
	}
	if rule.BadExample != "" {
		r.Println("")
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
	}
	if rule.GoodExample != "" {
		r.Println("")
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
	}
	if rule.Fix != "" {
		r.Println("")
		r.Println(styles.Bold.Render("How to Fix"))
		r.Println("  " + rule.Fix)
	}
	if len(rule.ConfigKeys) > 0 {
		r.Println("")
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(rule.ConfigKeys, ", "))
	}
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule *core.RuleInfo) {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Group:** %s | **Severity:** `%s`\n\n", rule.Group, rule.DefaultSeverity.String())
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}
	if rule.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Println("```yaml")
		r.Println(rule.BadExample)
		r.Println("```")
		r.Println("")
	}
	if rule.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Println("```yaml")
		r.Println(rule.GoodExample)
		r.Println("```")
		r.Println("")
	}
	if rule.Fix != "" {
		r.Println("## How to Fix")
		r.Println("")
		r.Println(rule.Fix)
		r.Println("")
	}
	if len(rule.ConfigKeys) > 0 {
		r.Println("## Configuration")
		r.Println("")
		r.Printf("Options: `%s`\n", strings.Join(rule.ConfigKeys, "`, `"))
	}
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
