package provenance

import (
	"sort"

	"github.com/tc-opendata/railcat/pkg/lint"
)

// Analyzer runs catalog lint rules against a Context.
type Analyzer struct {
	config *lint.Config
}

// NewAnalyzer creates a new analyzer. A nil config enables every rule.
func NewAnalyzer(config *lint.Config) *Analyzer {
	if config == nil {
		config = lint.NewConfig()
	}
	return &Analyzer{config: config}
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() *lint.Config {
	return a.config
}

// Rules returns the registered rules this analyzer will run.
func (a *Analyzer) Rules() []RuleDef {
	var enabled []RuleDef
	for _, rule := range GetAll() {
		if !a.config.IsDisabled(rule.ID) {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// Analyze runs all enabled rules and returns diagnostics ordered by record
// position, then rule ID.
func (a *Analyzer) Analyze(ctx *Context) []lint.Diagnostic {
	if ctx == nil {
		return nil
	}

	var diagnostics []lint.Diagnostic
	for _, rule := range a.Rules() {
		diags := rule.Check(ctx, a.config.GetRuleOptions(rule.ID))

		// Apply severity overrides
		for i := range diags {
			if diags[i].RuleID == "" {
				diags[i].RuleID = rule.ID
			}
			diags[i].Severity = a.config.GetSeverity(rule.ID, diags[i].Severity)
		}

		diagnostics = append(diagnostics, diags...)
	}

	sort.SliceStable(diagnostics, func(i, j int) bool {
		if diagnostics[i].Index != diagnostics[j].Index {
			return diagnostics[i].Index < diagnostics[j].Index
		}
		return diagnostics[i].RuleID < diagnostics[j].RuleID
	})
	return diagnostics
}
