/*
PURPOSE:
  Writes aggregated records to a JSON Lines file (NDJSON), one record
  per line with its component/dataset/file key inlined.
  Optimized for machine parsing and `jq` pipelines.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - The nested results document is awkward to stream; flat lines are
    append-friendly and grep-able.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Record, internal/model.Tree

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("results.jsonl")
  w.WriteTree("Alpha_wrap_3", tree)
  w.Close()

RELATED FILES:
  - internal/model/types.go
  - internal/output/csv.go

MAINTENANCE:
  - Keep line fields in sync with model.Record.
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/daryltucker/meshbench/internal/model"
)

// Line is one JSON Lines entry.
type Line struct {
	Component string `json:"component"`
	Dataset   string `json:"dataset"`
	File      string `json:"file"`
	model.Record
}

// JSONWriter handles writing records to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single record as a JSON line.
func (jw *JSONWriter) Write(component, dataset, name string, r model.Record) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(Line{Component: component, Dataset: dataset, File: name, Record: r})
}

// WriteTree writes every record of tree in sorted order.
func (jw *JSONWriter) WriteTree(component string, tree model.Tree) error {
	var err error
	tree.Each(func(dataset, name string, rec model.Record) {
		if err == nil {
			err = jw.Write(component, dataset, name, rec)
		}
	})
	return err
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
