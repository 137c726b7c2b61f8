/*
PURPOSE:
  Defines the root Cobra command for the meshbench CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - CI parses logs, so --log-format json is available.
  - Commands are built by constructors so tests get fresh flag state.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/meshbench/main.go
  - Calls: Child commands (run, init, summary, components)
  - Modifies: output.Logger (log format and level).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.
  - Cobra's own error printing is silenced; main prints once.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to newRootCmd() and globalOptions.

RELATED FILES:
  - cmd/meshbench/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/daryltucker/meshbench/internal/output"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logFormat string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "meshbench",
		Short: "Aggregates mesh benchmark logs into dated JSON results",
		Long: `Collects the Performance, Quality and Robustness logs written by a mesh
processing benchmark and merges them into one JSON document per component
and day. Use 'run --help' for aggregation options.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.Configure(cmd.ErrOrStderr(), opts.logFormat, opts.verbose)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./meshbench.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log output format: text or json")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(opts),
		newInitCmd(opts),
		newSummaryCmd(),
		newComponentsCmd(),
	)
	return cmd
}

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
