/*
PURPOSE:
  Writes aggregated benchmark records to a flat CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Spreadsheet-friendly export next to the JSON document.

  Implementation-discovered:
  - Quality columns differ per schema, so Quality is one JSON-encoded
    column (same trick as the config column of earlier result files).
  - Robustness is sparse; the fired outcome name (or empty) is enough.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Record, internal/model.Tree

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex since the engine may write from a worker pool.

USAGE:
  w, err := output.NewCSVWriter("results.csv")
  w.WriteTree("Alpha_wrap_3", tree)
  w.Close()

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Record changes.
*/

package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"sync"

	"github.com/daryltucker/meshbench/internal/model"
)

// CSVHeader is the column layout written by CSVWriter.
var CSVHeader = []string{
	"component", "dataset", "path", "file",
	"seconds", "memory_peaks", "quality", "robustness",
}

// CSVWriter handles writing records to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single record to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(component, dataset, name string, r model.Record) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	quality, err := json.Marshal(r.Quality)
	if err != nil {
		return err
	}
	outcome, _ := r.Robustness.Fired()

	record := []string{
		component,
		dataset,
		r.Path,
		name,
		r.Performance.Seconds.String(),
		r.Performance.MemoryPeaks.String(),
		string(quality),
		string(outcome),
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// WriteTree writes every record of tree in sorted order.
func (cw *CSVWriter) WriteTree(component string, tree model.Tree) error {
	var err error
	tree.Each(func(dataset, name string, rec model.Record) {
		if err == nil {
			err = cw.Write(component, dataset, name, rec)
		}
	})
	return err
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
