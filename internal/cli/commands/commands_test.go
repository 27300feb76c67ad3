package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tc-opendata/railcat/internal/cli/config"
	"github.com/tc-opendata/railcat/internal/cli/testutil"
)

// setupProject writes a project with the given catalog, changes into it and
// loads its config the way the root command would. Extra env vars are set
// before loading.
func setupProject(t *testing.T, catalogYAML string, env map[string]string) string {
	t.Helper()
	dir := testutil.SetupTestProject(t, catalogYAML)
	t.Chdir(dir)
	for k, v := range env {
		t.Setenv(k, v)
	}

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	return dir
}

// execute runs cmd the way the root command does: errors are returned, never
// followed by usage text.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewListCommand(), "list", []string{"jurisdiction"}},
		{NewShowCommand(), "show <filename>", nil},
		{NewLintCommand(), "lint", []string{"links", "cached", "disable", "rule", "severity"}},
		{NewRulesCommand(), "rules [rule-id]", []string{"group", "verbose"}},
		{NewLinksCommand(), "links", []string{"save", "all"}},
		{NewHistoryCommand(), "history [run-id]", []string{"limit"}},
		{NewReadmeCommand(), "readme", []string{"check", "stdout", "watch", "links"}},
		{NewServeCommand(), "serve", []string{"addr"}},
		{NewInitCommand(), "init [directory]", []string{"force"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewVersionCommand(t *testing.T) {
	out, _, err := execute(NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "railcat v1.2.3")
	assert.Contains(t, out, "rail open data")
}

func TestGetConfig_Defaults(t *testing.T) {
	config.ResetConfig()
	cfg := getConfig()
	assert.Equal(t, config.DefaultStateFile, cfg.StatePath)
	assert.Equal(t, config.DefaultOutput, cfg.OutputFormat)
	assert.Empty(t, cfg.CatalogPath)
}

func TestBuildLintConfig(t *testing.T) {
	t.Run("empty options", func(t *testing.T) {
		cfg, err := buildLintConfig(nil, nil, nil)
		require.NoError(t, err)
		assert.False(t, cfg.IsDisabled("CR01"))
	})

	t.Run("disable rules", func(t *testing.T) {
		cfg, err := buildLintConfig(nil, []string{"cu03", " CD02 "}, nil)
		require.NoError(t, err)
		assert.True(t, cfg.IsDisabled("CU03"))
		assert.True(t, cfg.IsDisabled("CD02"))
		assert.False(t, cfg.IsDisabled("CR01"))
	})

	t.Run("only specific rules", func(t *testing.T) {
		cfg, err := buildLintConfig(nil, nil, []string{"CR01", "cr02"})
		require.NoError(t, err)
		assert.False(t, cfg.IsDisabled("CR01"))
		assert.False(t, cfg.IsDisabled("CR02"))
		assert.True(t, cfg.IsDisabled("CU01"))
	})

	t.Run("unknown rule", func(t *testing.T) {
		_, err := buildLintConfig(nil, nil, []string{"XX99"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown rule")
	})

	t.Run("project config", func(t *testing.T) {
		projectCfg := &config.Config{
			Lint: &config.LintConfig{
				Disabled: []string{"CD02"},
				Severity: map[string]string{"CU03": "error"},
				Rules:    map[string]config.RuleOptions{"CU01": {"require_https": true}},
			},
		}
		cfg, err := buildLintConfig(projectCfg, []string{"CS01"}, nil)
		require.NoError(t, err)
		assert.True(t, cfg.IsDisabled("CD02"))
		assert.True(t, cfg.IsDisabled("CS01"))
		assert.Equal(t, "error", cfg.GetSeverity("CU03", 1).String())
		assert.Equal(t, true, cfg.GetRuleOptions("CU01")["require_https"])
	})
}
