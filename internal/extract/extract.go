/*
PURPOSE:
  Extracts Performance, Quality and Robustness metrics for one mesh file
  from the per-category logs of a benchmark commit.

REQUIREMENTS:
  User-specified:
  - Performance: line 1 is seconds, line 2 is memory_peaks.
  - Quality: named 8-line schema or generic 10-slot metric_N schema.
  - Robustness: the first line sets exactly one known flag, else {}.
  - Values are kept as raw text.

  Implementation-discovered:
  - A missing log degrades to "N/A" per value and never fails extraction.
  - The schema is chosen per deployment, never guessed from the log.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (via Registry.Lookup)
  - Uses: internal/logread, internal/model

ERROR HANDLING:
  - None returned. Unreadable logs become model.ReadError values.

USAGE:
  x := extract.NewExtractor(extract.Source{ResultsDir: "output", Commit: "abc"}, extract.SchemaNamed)
  metrics := x.Extract("cube")

RELATED FILES:
  - internal/extract/registry.go
  - internal/logread/logread.go
*/

// Package extract turns per-file benchmark logs into metric sets.
//
// Each category lives at <results>/<Category>/results/<commit>/<name>.log
// and is parsed positionally: the log format has no field names, so line
// order is the schema.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/daryltucker/meshbench/internal/logread"
	"github.com/daryltucker/meshbench/internal/model"
)

// Benchmark categories, also the directory names under the results root.
const (
	CategoryPerformance = "Performance"
	CategoryQuality     = "Quality"
	CategoryRobustness  = "Robustness"
)

// QualitySchema selects the Quality log format of a deployment.
type QualitySchema string

const (
	// SchemaNamed is the 8-line format with named mesh-quality metrics.
	SchemaNamed QualitySchema = "named"
	// SchemaGeneric is the 10-slot metric_N format.
	SchemaGeneric QualitySchema = "generic"
)

// ParseQualitySchema validates a schema name from configuration.
func ParseQualitySchema(s string) (QualitySchema, error) {
	switch QualitySchema(strings.ToLower(strings.TrimSpace(s))) {
	case SchemaNamed, "":
		return SchemaNamed, nil
	case SchemaGeneric:
		return SchemaGeneric, nil
	}
	return "", fmt.Errorf("unknown quality schema %q (want %q or %q)", s, SchemaNamed, SchemaGeneric)
}

// QualityFields are the named-schema Quality metrics in log order.
var QualityFields = []string{
	"Mean_Min_Angle_(degree)",
	"Mean_Max_Angle_(degree)",
	"Mean_Radius_Ratio",
	"Mean_Edge_Ratio",
	"Mean_Aspect_Ratio",
	"Complexity_(#_of_triangle)",
	"#_of_almost_degenerate_triangle",
	"Hausdorff_distance_output_to_input_(%_of_bbox_diag)",
}

const genericQualitySlots = 10

// Source locates the logs of one benchmark run.
type Source struct {
	ResultsDir string
	Commit     string
}

// LogPath returns the log file for fileName in the given category.
func (s Source) LogPath(category, fileName string) string {
	return filepath.Join(s.ResultsDir, category, "results", s.Commit, fileName+".log")
}

// Processor extracts all metrics for one input file.
type Processor interface {
	Extract(fileName string) model.Metrics
}

// Extractor is the standard Processor: Performance, Quality (per schema)
// and Robustness read from Source.
type Extractor struct {
	Source Source
	Schema QualitySchema
}

// NewExtractor returns an Extractor reading logs from src.
func NewExtractor(src Source, schema QualitySchema) *Extractor {
	return &Extractor{Source: src, Schema: schema}
}

// Extract implements Processor.
func (e *Extractor) Extract(fileName string) model.Metrics {
	return model.Metrics{
		Performance: e.Performance(fileName),
		Quality:     e.Quality(fileName),
		Robustness:  e.Robustness(fileName),
	}
}

// Performance reads seconds and memory peak from the first two lines.
func (e *Extractor) Performance(fileName string) model.Performance {
	lines := logread.ReadLines(e.Source.LogPath(CategoryPerformance, fileName), 2)
	return model.Performance{
		Seconds:     lines[0],
		MemoryPeaks: lines[1],
	}
}

// Quality reads the Quality log according to the configured schema.
func (e *Extractor) Quality(fileName string) model.Quality {
	path := e.Source.LogPath(CategoryQuality, fileName)
	if e.Schema == SchemaGeneric {
		return genericQuality(logread.ReadLines(path, genericQualitySlots))
	}
	return namedQuality(logread.ReadLines(path, len(QualityFields)))
}

// Robustness reads the single outcome line.
func (e *Extractor) Robustness(fileName string) model.Robustness {
	lines := logread.ReadLines(e.Source.LogPath(CategoryRobustness, fileName), 1)
	return ParseRobustness(lines[0])
}

func namedQuality(lines []model.Value) model.Quality {
	q := make(model.Quality, len(QualityFields))
	for i, name := range QualityFields {
		q[i] = model.Field{Name: name, Value: lines[i]}
	}
	return q
}

// genericQuality keeps only slots that hold a real value.
func genericQuality(lines []model.Value) model.Quality {
	q := model.Quality{}
	for i, v := range lines {
		switch v.String() {
		case "", model.NotAvailable, model.ErrorMarker:
			continue
		}
		q = append(q, model.Field{Name: fmt.Sprintf("metric_%d", i+1), Value: v})
	}
	return q
}

// ParseRobustness maps an outcome line onto the sparse flag set.
// Sentinels and unknown text produce an empty set.
func ParseRobustness(v model.Value) model.Robustness {
	flags := model.Robustness{}
	if !v.IsOK() {
		return flags
	}
	if o, ok := model.ParseOutcome(strings.TrimSpace(v.Text)); ok {
		flags[o] = 1
	}
	return flags
}
