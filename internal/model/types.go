/*
PURPOSE:
  Defines the core data structures used throughout meshbench.
  These models represent per-file benchmark records and the nested
  result tree that is persisted as the dated JSON document.

REQUIREMENTS:
  User-specified:
  - One record per discovered mesh file: path + Performance, Quality, Robustness.
  - Keep every metric as raw text (no numeric parsing).

  Implementation-discovered:
  - Quality fields must serialize in a fixed order, so Quality is a slice.
  - Robustness must serialize as a sparse object ({} when nothing matched).

ARCHITECTURE INTEGRATION:
  - Used by: internal/extract, internal/engine, internal/store, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - JSON field names match the dashboard's expectations exactly.

USAGE:
  rec := model.NewRecord(ref.SubPath, metrics)
  tree.Insert(ref, rec)

SELF-HEALING INSTRUCTIONS:
  - If the log format gains a field, extend the extractor, not this file.

RELATED FILES:
  - internal/model/value.go
  - internal/store/store.go

MAINTENANCE:
  - Update when the JSON document layout changes.
*/

package model

import (
	"bytes"
	"encoding/json"
	"sort"
)

// FileRef describes one discovered mesh file relative to the input root.
type FileRef struct {
	TopDir  string // first directory under the input root, "" if none
	SubPath string // remaining directories, "/"-terminated, "" if none
	Name    string // file name without extension
	Path    string // absolute or root-joined path on disk
}

// Performance holds the two raw Performance log lines.
type Performance struct {
	Seconds     Value `json:"seconds"`
	MemoryPeaks Value `json:"memory_peaks"`
}

// Field is one named Quality metric.
type Field struct {
	Name  string
	Value Value
}

// Quality is an ordered set of Quality metrics.
type Quality []Field

// Get returns the value stored under name.
func (q Quality) Get(name string) (Value, bool) {
	for _, f := range q {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// MarshalJSON writes the fields as a JSON object in slice order.
func (q Quality) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range q {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Outcome is one of the fixed Robustness categories.
type Outcome string

const (
	ValidSolidOutput                   Outcome = "VALID_SOLID_OUTPUT"
	InputIsInvalid                     Outcome = "INPUT_IS_INVALID"
	OutputIsNotTriangleMesh            Outcome = "OUTPUT_IS_NOT_TRIANGLE_MESH"
	OutputIsCombinatorialNonManifold   Outcome = "OUTPUT_IS_COMBINATORIAL_NON_MANIFOLD"
	OutputHasBorders                   Outcome = "OUTPUT_HAS_BORDERS"
	OutputHasDegeneratedFaces          Outcome = "OUTPUT_HAS_DEGENERATED_FACES"
	OutputHasGeometricSelfIntersection Outcome = "OUTPUT_HAS_GEOMETRIC_SELF_INTERSECTIONS"
	OutputDoesNotBoundVolume           Outcome = "OUTPUT_DOES_NOT_BOUND_VOLUME"
	OutputDoesNotContainInput          Outcome = "OUTPUT_DOES_NOT_CONTAIN_INPUT"
	OutputDistanceIsTooLarge           Outcome = "OUTPUT_DISTANCE_IS_TOO_LARGE"
	SignalSegv                         Outcome = "SIGSEGV"
	SignalAbrt                         Outcome = "SIGABRT"
	SignalFpe                          Outcome = "SIGFPE"
	Timeout                            Outcome = "TIMEOUT"
)

// Outcomes lists every Robustness outcome in log-format order.
var Outcomes = []Outcome{
	ValidSolidOutput,
	InputIsInvalid,
	OutputIsNotTriangleMesh,
	OutputIsCombinatorialNonManifold,
	OutputHasBorders,
	OutputHasDegeneratedFaces,
	OutputHasGeometricSelfIntersection,
	OutputDoesNotBoundVolume,
	OutputDoesNotContainInput,
	OutputDistanceIsTooLarge,
	SignalSegv,
	SignalAbrt,
	SignalFpe,
	Timeout,
}

// ParseOutcome reports whether s names a known outcome (case-sensitive).
func ParseOutcome(s string) (Outcome, bool) {
	for _, o := range Outcomes {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

// Robustness is the sparse flag set: only fired outcomes are present.
type Robustness map[Outcome]int

// Fired returns the outcome that was set, if any.
func (r Robustness) Fired() (Outcome, bool) {
	for _, o := range Outcomes {
		if r[o] == 1 {
			return o, true
		}
	}
	return "", false
}

// MarshalJSON keeps an empty set as {} instead of null.
func (r Robustness) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[Outcome]int(r))
}

// Metrics bundles the three benchmark categories for one file.
type Metrics struct {
	Performance Performance
	Quality     Quality
	Robustness  Robustness
}

// Record is the JSON value stored under [component][top_dir][file_name].
type Record struct {
	Path        string      `json:"path"`
	Performance Performance `json:"Performance"`
	Quality     Quality     `json:"Quality"`
	Robustness  Robustness  `json:"Robustness"`
}

// NewRecord assembles a record for a file located at subPath.
func NewRecord(subPath string, m Metrics) Record {
	return Record{
		Path:        subPath,
		Performance: m.Performance,
		Quality:     m.Quality,
		Robustness:  m.Robustness,
	}
}

// Tree maps top-level directory -> file base name -> record.
type Tree map[string]map[string]Record

// Insert stores rec at [ref.TopDir][ref.Name]; an existing entry is replaced.
func (t Tree) Insert(ref FileRef, rec Record) {
	dir, ok := t[ref.TopDir]
	if !ok {
		dir = make(map[string]Record)
		t[ref.TopDir] = dir
	}
	dir[ref.Name] = rec
}

// Len returns the number of records across all directories.
func (t Tree) Len() int {
	n := 0
	for _, dir := range t {
		n += len(dir)
	}
	return n
}

// Each visits every record in sorted (top_dir, name) order.
func (t Tree) Each(fn func(topDir, name string, rec Record)) {
	dirs := make([]string, 0, len(t))
	for d := range t {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		names := make([]string, 0, len(t[d]))
		for n := range t[d] {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fn(d, n, t[d][n])
		}
	}
}

// Document is the persisted output: component name -> result tree.
type Document map[string]Tree
