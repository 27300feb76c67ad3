package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/cli/config"
)

// defaultConfigYAML is written by 'railcat init'.
const defaultConfigYAML = `# railcat configuration
catalog_path: catalog.yaml
readme_path: README.md
state_path: .railcat/state.db

lint:
  # disabled: [CD02]
  severity: {}
  rules:
    CU01:
      require_https: false
    # CU03:
    #   hosts:
    #     DE: [data.deutschebahn.com]

links:
  timeout: 10s
  concurrency: 4
  rate_per_host: 2
  retries: 3

serve:
  addr: 127.0.0.1:8080
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create railcat.yaml and a starter catalog",
		Long: `Initialize a railcat project.

This creates:
  - railcat.yaml configuration file
  - catalog.yaml, a copy of the built-in rail open-data catalog`,
		Example: `  # Initialize in current directory
  railcat init

  # Initialize in a new directory
  railcat init data-docs

  # Overwrite existing files
  railcat init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	r := NewCommandContext(cmd).Renderer

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	files := []struct {
		name    string
		content []byte
	}{
		{config.ConfigFileNames[0], []byte(defaultConfigYAML)},
		{config.DefaultCatalogFile, catalog.DefaultYAML()},
	}

	if !force {
		for _, f := range files {
			if _, err := os.Stat(filepath.Join(dir, f.name)); err == nil {
				return fmt.Errorf("%s already exists. Use --force to overwrite", f.name)
			}
		}
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.content, 0o644); err != nil { //nolint:gosec // project files
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		r.StatusLine(f.name, "success", "")
	}

	r.Println("")
	r.Success("railcat project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Edit catalog.yaml to describe your data files")
	r.Println("  2. Run 'railcat lint' to check it")
	r.Println("  3. Run 'railcat readme' to render the attribution README")
	return nil
}
