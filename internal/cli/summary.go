/*
PURPOSE:
  Defines the 'summary' subcommand.
  Prints per-component outcome counts of one day, optionally compared
  to a baseline day.

REQUIREMENTS:
  User-specified:
  - Default to the latest date in the directory.
  - --compare DATE or --previous selects the baseline.

ERROR HANDLING:
  - Returns error when the directory holds no documents for the date.
  - --previous without an earlier date is an error.

USAGE:
  meshbench summary --dir benchmark/json --previous

RELATED FILES:
  - internal/report/report.go
  - internal/report/render.go
*/

package cli

import (
	"errors"
	"fmt"

	"github.com/daryltucker/meshbench/internal/report"
	"github.com/spf13/cobra"
)

type summaryOptions struct {
	dir      string
	date     string
	compare  string
	previous bool
}

func newSummaryCmd() *cobra.Command {
	opts := &summaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarise the results documents of one day",
		Long: `Counts valid, error and timeout outcomes per component in the
<component>_results_<date>.json documents of a directory. With --compare
(or --previous) it also shows how many files entered (+) or left (-) each
category since the baseline date.`,
		Example: `  # Latest day
  meshbench summary --dir benchmark/json

  # A given day against the day before it
  meshbench summary --dir benchmark/json --date 2024-03-07 --previous`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.dir, "dir", "d", "", "directory holding the results documents")
	f.StringVar(&opts.date, "date", "", "day to summarise, YYYY-MM-DD (default: latest)")
	f.StringVar(&opts.compare, "compare", "", "baseline day to compare against, YYYY-MM-DD")
	f.BoolVar(&opts.previous, "previous", false, "compare against the latest day before --date")
	_ = cmd.MarkFlagRequired("dir")
	cmd.MarkFlagsMutuallyExclusive("compare", "previous")

	return cmd
}

func runSummary(cmd *cobra.Command, opts *summaryOptions) error {
	dates, err := report.Dates(opts.dir)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		return fmt.Errorf("no results documents in %s", opts.dir)
	}

	date := opts.date
	if date == "" {
		date = dates[len(dates)-1]
	}
	cur, err := report.LoadDate(opts.dir, date)
	if err != nil {
		return err
	}

	baseline := opts.compare
	if opts.previous {
		prev, ok := report.Previous(dates, date)
		if !ok {
			return errors.New("no earlier results to compare against")
		}
		baseline = prev
	}

	var base *report.Snapshot
	if baseline != "" {
		if base, err = report.LoadDate(opts.dir, baseline); err != nil {
			return err
		}
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), report.Render(report.Summarize(cur, base)))
	return err
}
