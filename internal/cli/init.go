/*
PURPOSE:
  Defines the 'init' subcommand.
  Creates today's empty document before parallel single-file runs.

REQUIREMENTS:
  User-specified:
  - Never overwrite an existing document.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run() with InitOnly forced.

RELATED FILES:
  - internal/cli/run.go
*/

package cli

import (
	"github.com/daryltucker/meshbench/internal/config"
	"github.com/daryltucker/meshbench/internal/engine"
	"github.com/daryltucker/meshbench/internal/extract"
	"github.com/spf13/cobra"
)

// newInitCmd is a shorthand for 'run --init-only'.
func newInitCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create today's empty results document",
		Long: `Creates <json-output>/<component>_results_<date>.json containing only
{"<component>": {}} if it does not exist yet. Existing documents are left
untouched. CI runs this once before fanning out single-file runs.`,
		Example: `  meshbench init --component Alpha_wrap_3 --json-output benchmark/json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, cmd.Flags(), opts, func(c *config.Config) {
				c.InitOnly = true
			})
			if err != nil {
				return err
			}
			return engine.Run(cmd.Context(), cfg, extract.DefaultRegistry())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.component, "component", "", "component name, the top-level key of the document")
	f.StringVar(&opts.jsonOutput, "json-output", "", "directory receiving <component>_results_<date>.json")
	f.StringVar(&opts.jsonFile, "json-file", "", "path prefix producing <json-file>_<date>.json instead of --json-output")

	return cmd
}
