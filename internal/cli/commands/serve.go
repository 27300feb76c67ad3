package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only JSON view of the catalog",
		Long: `Start an HTTP server exposing the catalog as JSON.

Endpoints:
  GET /healthz
  GET /api/datasets[?jurisdiction=DE]
  GET /api/datasets/{filename}
  GET /api/jurisdictions
  GET /api/submodules
  GET /api/diagnostics
  GET /api/checks[?limit=N]
  GET /api/checks/{id}

Diagnostics include CU02 findings from the latest saved link check.`,
		Example: `  railcat serve
  railcat serve --addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from serve.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	cmdCtx := NewCommandContext(cmd)

	c, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	lintCfg, err := buildLintConfig(cmdCtx.Cfg, nil, nil)
	if err != nil {
		return err
	}

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	serveCfg := cmdCtx.Cfg.GetServeConfig()
	if addr != "" {
		serveCfg.Addr = addr
	}

	srv := server.New(server.Config{
		Catalog:        c,
		Store:          store,
		LintConfig:     lintCfg,
		Addr:           serveCfg.Addr,
		AllowedOrigins: serveCfg.AllowedOrigins,
		Logger:         cmdCtx.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx.Renderer.Success("Serving " + c.Path() + " on http://" + serveCfg.Addr)
	return srv.Serve(ctx)
}
