package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/linkcheck"
	"github.com/tc-opendata/railcat/internal/readme"
)

// ReadmeOptions holds options for the readme command.
type ReadmeOptions struct {
	Check  bool // Verify instead of writing
	Stdout bool // Print instead of writing
	Watch  bool // Re-render on catalog changes
	Links  bool // Check the links of the existing README
}

// NewReadmeCommand creates the readme command.
func NewReadmeCommand() *cobra.Command {
	opts := &ReadmeOptions{}
	cmd := &cobra.Command{
		Use:   "readme",
		Short: "Render the attribution README from the catalog",
		Long: `Render the README from the catalog: one attribution table per
jurisdiction with license links and sources, followed by the submodules.

The README path is taken from readme_path in railcat.yaml or --readme.
Use --check in CI to fail when the README no longer matches the catalog.`,
		Example: `  # Regenerate README.md
  railcat readme

  # Fail if README.md is stale
  railcat readme --check

  # Regenerate whenever catalog.yaml changes
  railcat readme --watch

  # Check the links in the current README
  railcat readme --links`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReadme(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "Fail if the README is out of date instead of writing it")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Print the rendered README instead of writing it")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-render when the catalog changes")
	cmd.Flags().BoolVar(&opts.Links, "links", false, "Check the external links of the existing README")
	cmd.MarkFlagsMutuallyExclusive("check", "stdout", "watch", "links")

	return cmd
}

func runReadme(cmd *cobra.Command, opts *ReadmeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	path := cmdCtx.Cfg.ReadmePath

	if opts.Links {
		return checkReadmeLinks(cmd.Context(), cmdCtx, path)
	}

	c, err := cmdCtx.LoadCatalog()
	if err != nil {
		return err
	}

	switch {
	case opts.Stdout:
		out, err := readme.Render(c)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err

	case opts.Check:
		drift, err := readme.VerifyFile(c, path)
		if err != nil {
			return err
		}
		if drift != nil {
			r.Error(drift.String())
			return fmt.Errorf("%s is out of date\nHint: run 'railcat readme' to regenerate it", path)
		}
		r.Success(path + " is up to date")
		return nil

	case opts.Watch:
		return watchReadme(cmd.Context(), cmdCtx, path)
	}

	if err := readme.WriteFile(c, path); err != nil {
		return err
	}
	r.Success(fmt.Sprintf("Wrote %s (%d datasets)", path, c.Len()))
	return nil
}

func watchReadme(ctx context.Context, cmdCtx *CommandContext, path string) error {
	if cmdCtx.Cfg.CatalogPath == "" {
		return errors.New("--watch needs a catalog file\nHint: set catalog_path in railcat.yaml or pass --catalog")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	regenerate := func() error {
		c, err := catalog.Load(cmdCtx.Cfg.CatalogPath)
		if err != nil {
			cmdCtx.Renderer.Error(err.Error())
			return err
		}
		if err := readme.WriteFile(c, path); err != nil {
			return err
		}
		cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %s (%d datasets)", path, c.Len()))
		return nil
	}

	if err := regenerate(); err != nil {
		cmdCtx.Logger.Warn("initial render failed", slog.String("error", err.Error()))
	}
	cmdCtx.Renderer.Muted("Watching " + cmdCtx.Cfg.CatalogPath + " (Ctrl+C to stop)")
	return readme.Watch(ctx, cmdCtx.Cfg.CatalogPath, cmdCtx.Logger, regenerate)
}

func checkReadmeLinks(ctx context.Context, cmdCtx *CommandContext, path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read README: %w", err)
	}

	checker := linkcheck.New(cmdCtx.Cfg.GetLinksConfig(), cmdCtx.Logger)
	results, err := checker.Check(ctx, readme.ExternalURLs(doc))
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	r.Header(1, fmt.Sprintf("README links (%d URLs)", len(results)))
	failed := 0
	for _, res := range results {
		if !res.Failed() {
			continue
		}
		failed++
		r.StatusLine(res.URL, "failed", linkDetail(res, nil))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d README links failed", failed, len(results))
	}
	r.Success("All README links resolved")
	return nil
}
