/*
PURPOSE:
  Defines the 'run' subcommand.
  Aggregates benchmark logs into today's JSON document.

REQUIREMENTS:
  User-specified:
  - Folder mode, single-file mode and init-only mode.
  - Flags override the config file and environment.

  Implementation-discovered:
  - Need to load config first.
  - Only flags the user actually set may override config values,
    otherwise empty flag defaults would wipe the YAML file.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config, internal/extract

ERROR HANDLING:
  - Returns error if config load fails or engine run fails.
  - Missing required inputs surface as config.ErrInvalidInvocation.

IMPLEMENTATION RULES:
  - Flags bound in newRunCmd().
  - Logic: Load Config -> Env -> Flags -> Engine.Run.

USAGE:
  meshbench run --component Alpha_wrap_3 --input-folder data --output-dir out --commit abc

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config yaml keys (dashes instead of underscores).

RELATED FILES:
  - internal/cli/root.go
  - internal/config/config.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"github.com/daryltucker/meshbench/internal/config"
	"github.com/daryltucker/meshbench/internal/engine"
	"github.com/daryltucker/meshbench/internal/extract"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runOptions mirrors the overridable config keys.
type runOptions struct {
	component   string
	inputFolder string
	inputFile   string
	singleFile  bool
	resultsDir  string
	jsonOutput  string
	jsonFile    string
	commit      string
	schema      string
	workers     int
	exclude     []string
	csvOutput   string
	jsonlOutput string
	fresh       bool
	initOnly    bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Aggregate benchmark logs into today's results document",
		Long: `Walks the input folder (or a single input file), reads the Performance,
Quality and Robustness logs of every mesh for the given commit and merges
the metrics into <json-output>/<component>_results_<date>.json.

Missing logs are recorded as "N/A" and unreadable logs as "ERROR"; neither
stops the run.`,
		Example: `  # Aggregate a whole dataset folder
  meshbench run --component Alpha_wrap_3 --input-folder data/meshes \
    --output-dir benchmark/output --json-output benchmark/json --commit abc123

  # Add one mesh to today's document
  meshbench run --component Alpha_wrap_3 --single-file --input-file data/meshes/a/cube.off \
    --input-folder data/meshes --output-dir benchmark/output --commit abc123

  # Only create today's (empty) document
  meshbench run --component Alpha_wrap_3 --init-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, cmd.Flags(), opts)
			if err != nil {
				return err
			}
			return engine.Run(cmd.Context(), cfg, extract.DefaultRegistry())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.component, "component", "", "component name, the top-level key of the document")
	f.StringVar(&opts.inputFolder, "input-folder", "", "root folder of the input meshes")
	f.StringVar(&opts.inputFile, "input-file", "", "single input mesh (with --single-file)")
	f.BoolVar(&opts.singleFile, "single-file", false, "process only --input-file")
	f.StringVarP(&opts.resultsDir, "output-dir", "o", "", "benchmark results root holding Performance/, Quality/ and Robustness/")
	f.StringVar(&opts.jsonOutput, "json-output", "", "directory receiving <component>_results_<date>.json")
	f.StringVar(&opts.jsonFile, "json-file", "", "path prefix producing <json-file>_<date>.json instead of --json-output")
	f.StringVar(&opts.commit, "commit", "", "commit identifier of the benchmark run")
	f.StringVar(&opts.schema, "quality-schema", "", "Quality log format: named or generic")
	f.IntVarP(&opts.workers, "workers", "w", 0, "number of files processed in parallel")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "glob patterns (relative to the input folder) to skip")
	f.StringVar(&opts.csvOutput, "csv", "", "also write a flat CSV export to this path")
	f.StringVar(&opts.jsonlOutput, "jsonl", "", "also write a JSON Lines export to this path")
	f.BoolVar(&opts.fresh, "fresh", false, "replace today's document instead of merging into it")
	f.BoolVar(&opts.initOnly, "init-only", false, "only create today's document")

	return cmd
}

// loadConfig builds the effective configuration:
// defaults < config file < MESHBENCH_* environment < flags set on the command line.
// adjust runs last, before validation.
func loadConfig(global *globalOptions, flags *pflag.FlagSet, opts *runOptions, adjust ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(global.cfgFile)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)

	overrides := []struct {
		flag  string
		apply func()
	}{
		{"component", func() { cfg.Component = opts.component }},
		{"input-folder", func() { cfg.InputFolder = opts.inputFolder }},
		{"input-file", func() { cfg.InputFile = opts.inputFile }},
		{"single-file", func() { cfg.SingleFile = opts.singleFile }},
		{"output-dir", func() { cfg.ResultsDir = opts.resultsDir }},
		{"json-output", func() { cfg.JSONOutput = opts.jsonOutput }},
		{"json-file", func() { cfg.JSONFile = opts.jsonFile }},
		{"commit", func() { cfg.Commit = opts.commit }},
		{"quality-schema", func() { cfg.QualitySchema = opts.schema }},
		{"workers", func() { cfg.Workers = opts.workers }},
		{"exclude", func() { cfg.Exclude = opts.exclude }},
		{"csv", func() { cfg.CSVOutput = opts.csvOutput }},
		{"jsonl", func() { cfg.JSONLOutput = opts.jsonlOutput }},
		{"fresh", func() { cfg.Fresh = opts.fresh }},
		{"init-only", func() { cfg.InitOnly = opts.initOnly }},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			o.apply()
		}
	}
	for _, fn := range adjust {
		fn(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
