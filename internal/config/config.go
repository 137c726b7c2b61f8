/*
PURPOSE:
  Defines the configuration structure and loading logic for meshbench.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Input folder or single input file, results root, JSON output location,
    commit identifier and component name.
  - "Init only" mode that only creates the dated output file.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support Environment variables overrides (MESHBENCH_...).
  - CI pipelines differ per component, so the Quality schema is explicit.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (file), github.com/spf13/viper (env)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default config file falls back to defaults.
  - Validate() wraps ErrInvalidInvocation for missing required inputs.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Precedence: defaults < file < environment < flags.

USAGE:
  cfg, err := config.Load("meshbench.yaml")
  config.ApplyEnv(cfg)

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct, envKeys and DefaultConfig().

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/daryltucker/meshbench/internal/extract"
	"github.com/daryltucker/meshbench/internal/walker"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalidInvocation marks a run that lacks required inputs.
var ErrInvalidInvocation = errors.New("invalid invocation")

// EnvPrefix is the prefix of environment overrides (MESHBENCH_COMMIT, ...).
const EnvPrefix = "MESHBENCH"

// Config represents the full configuration for meshbench.
type Config struct {
	Component   string `yaml:"component"`
	InputFolder string `yaml:"input_folder"`
	InputFile   string `yaml:"input_file"`
	SingleFile  bool   `yaml:"single_file"`
	// ResultsDir holds Performance/, Quality/ and Robustness/ log trees.
	ResultsDir string `yaml:"results_dir"`
	// JSONOutput is the directory receiving <component>_results_<date>.json.
	JSONOutput string `yaml:"json_output"`
	// JSONFile, if set, is a path prefix producing <json_file>_<date>.json.
	JSONFile      string   `yaml:"json_file"`
	Commit        string   `yaml:"commit"`
	QualitySchema string   `yaml:"quality_schema"`
	Workers       int      `yaml:"workers"`
	Extensions    []string `yaml:"extensions"`
	// Exclude is a list of doublestar globs relative to the input folder
	Exclude   []string `yaml:"exclude"`
	CSVOutput string   `yaml:"csv_output"`
	// JSONLOutput, if set, receives one JSON line per record.
	JSONLOutput string `yaml:"jsonl_output"`
	// Fresh overwrites today's document instead of merging into it.
	Fresh    bool `yaml:"fresh"`
	InitOnly bool `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		JSONOutput:    "json_results",
		QualitySchema: string(extract.SchemaNamed),
		Workers:       1,
		Extensions:    append([]string(nil), walker.DefaultExtensions...),
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		defaults := []string{"meshbench.yaml", ".meshbench.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

var envKeys = []string{
	"component", "input_folder", "input_file", "single_file", "results_dir",
	"json_output", "json_file", "commit", "quality_schema", "workers",
	"extensions", "exclude", "csv_output", "jsonl_output", "fresh",
}

// ApplyEnv overlays MESHBENCH_<KEY> environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for _, key := range envKeys {
		if !v.IsSet(key) {
			continue
		}
		switch key {
		case "component":
			cfg.Component = v.GetString(key)
		case "input_folder":
			cfg.InputFolder = v.GetString(key)
		case "input_file":
			cfg.InputFile = v.GetString(key)
		case "single_file":
			cfg.SingleFile = v.GetBool(key)
		case "results_dir":
			cfg.ResultsDir = v.GetString(key)
		case "json_output":
			cfg.JSONOutput = v.GetString(key)
		case "json_file":
			cfg.JSONFile = v.GetString(key)
		case "commit":
			cfg.Commit = v.GetString(key)
		case "quality_schema":
			cfg.QualitySchema = v.GetString(key)
		case "workers":
			cfg.Workers = v.GetInt(key)
		case "extensions":
			cfg.Extensions = splitList(v.GetString(key))
		case "exclude":
			cfg.Exclude = splitList(v.GetString(key))
		case "csv_output":
			cfg.CSVOutput = v.GetString(key)
		case "jsonl_output":
			cfg.JSONLOutput = v.GetString(key)
		case "fresh":
			cfg.Fresh = v.GetBool(key)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Mode is what a run will process.
type Mode int

const (
	ModeInit Mode = iota
	ModeSingleFile
	ModeFolder
)

// Mode reports what the configuration asks for; call Validate first.
func (c *Config) Mode() Mode {
	switch {
	case c.InitOnly:
		return ModeInit
	case c.SingleFile && c.InputFile != "":
		return ModeSingleFile
	default:
		return ModeFolder
	}
}

// Validate checks that the required inputs for the selected mode are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Component == "" {
		missing = append(missing, "component")
	}
	if c.JSONOutput == "" && c.JSONFile == "" {
		missing = append(missing, "json_output or json_file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInvocation, strings.Join(missing, ", "))
	}
	if c.InitOnly {
		return nil
	}

	if !(c.SingleFile && c.InputFile != "") && c.InputFolder == "" {
		return fmt.Errorf("%w: either input_folder or (single_file and input_file) must be provided", ErrInvalidInvocation)
	}
	if c.ResultsDir == "" {
		missing = append(missing, "results_dir")
	}
	if c.Commit == "" {
		missing = append(missing, "commit")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInvocation, strings.Join(missing, ", "))
	}

	if _, err := extract.ParseQualitySchema(c.QualitySchema); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return walker.Options{Exclude: c.Exclude}.Validate()
}

// WalkOptions returns the discovery options for this configuration.
func (c *Config) WalkOptions() walker.Options {
	return walker.Options{Extensions: c.Extensions, Exclude: c.Exclude}
}

// Source returns where benchmark logs are read from.
func (c *Config) Source() extract.Source {
	return extract.Source{ResultsDir: c.ResultsDir, Commit: c.Commit}
}
