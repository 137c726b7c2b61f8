/*
PURPOSE:
  Defines the 'components' subcommand.
  Lists components that have a built-in processor.

RELATED FILES:
  - internal/extract/registry.go
*/

package cli

import (
	"fmt"

	"github.com/daryltucker/meshbench/internal/extract"
	"github.com/spf13/cobra"
)

func newComponentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List components with a built-in processor",
		Long: `Lists the components that have a registered processor. Any other
component name is accepted by 'run' and uses the standard extractor with
the configured quality_schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range extract.DefaultRegistry().Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
