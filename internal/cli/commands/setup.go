// Package commands implements the railcat subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/cli/config"
	"github.com/tc-opendata/railcat/internal/cli/output"
	"github.com/tc-opendata/railcat/internal/state"
	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded config.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when the root
// command did not load one.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath:    config.DefaultStateFile,
		ReadmePath:   config.DefaultReadmeFile,
		OutputFormat: config.DefaultOutput,
	}
}

// LoadCatalog loads the configured catalog, or the embedded one.
func (c *CommandContext) LoadCatalog() (*catalog.Catalog, error) {
	if c.Cfg.CatalogPath == "" {
		c.Logger.Debug("using embedded catalog")
		return catalog.LoadDefault()
	}
	c.Logger.Debug("loading catalog", slog.String("path", c.Cfg.CatalogPath))
	return catalog.Load(c.Cfg.CatalogPath)
}

// OpenStore opens and migrates the state database. The returned cleanup
// closes it.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, func(), error) {
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// buildLintConfig merges the project lint config with CLI overrides.
// disable adds to the disabled rules; only, when set, restricts the run.
func buildLintConfig(cfg *config.Config, disable, only []string) (*lint.Config, error) {
	var lintCfg *lint.Config
	if cfg != nil {
		lintCfg = lint.FromLintConfig(cfg.Lint)
	} else {
		lintCfg = lint.NewConfig()
	}

	for _, id := range disable {
		lintCfg.Disable(strings.TrimSpace(id))
	}

	if len(only) > 0 {
		ids := make([]string, 0, len(only))
		for _, id := range only {
			id = strings.ToUpper(strings.TrimSpace(id))
			if _, ok := provenance.GetByID(id); !ok {
				return nil, fmt.Errorf("unknown rule %q\nHint: run 'railcat rules' to list rules", id)
			}
			ids = append(ids, id)
		}
		lintCfg.RestrictTo(ids...)
	}

	return lintCfg, nil
}
