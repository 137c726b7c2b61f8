/*
PURPOSE:
  Persists aggregated results to the dated JSON document
  (<component>_results_<YYYY-MM-DD>.json) consumed by the CI dashboard.

REQUIREMENTS:
  User-specified:
  - Init creates {component: {}} if absent and never overwrites.
  - Merge loads the existing document, sets one record (or a tree), writes back.
  - A missing or unparsable document is treated as empty, not as an error.
  - Re-running on the same day merges; a new day starts a new file.

  Implementation-discovered:
  - Records already on disk are kept as raw JSON so merging never rewrites
    values this version does not understand.
  - Extraction may be parallel, so read-modify-write is a critical section.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Record, internal/model.Tree

ERROR HANDLING:
  - Returns error on directory creation, encoding or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json with 4-space indentation (dashboard diffs expect it).
  - Thread-safe.

USAGE:
  s := store.New("json_results", "")
  path, err := s.Init("Alpha_wrap_3")
  err = s.MergeOne("Alpha_wrap_3", "group_a", "cube", rec)

RELATED FILES:
  - internal/model/types.go
  - internal/report/report.go
*/

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/daryltucker/meshbench/internal/model"
	"github.com/daryltucker/meshbench/internal/output"
)

// DateLayout is the date format embedded in output file names.
const DateLayout = "2006-01-02"

const indent = "    "

// Store writes result documents for one output location.
type Store struct {
	// Dir receives <component>_results_<date>.json files.
	Dir string
	// Prefix, when set, replaces the directory layout with <Prefix>_<date>.json.
	// A trailing .json on Prefix is dropped.
	Prefix string
	// Now supplies the date used in file names.
	Now func() time.Time

	mu sync.Mutex
}

// New creates a Store. Either dir or prefix must be set.
func New(dir, prefix string) *Store {
	return &Store{Dir: dir, Prefix: prefix, Now: time.Now}
}

// Path returns the dated output file for component.
func (s *Store) Path(component string) string {
	date := s.Now().Format(DateLayout)
	if s.Prefix != "" {
		return fmt.Sprintf("%s_%s.json", strings.TrimSuffix(s.Prefix, ".json"), date)
	}
	return filepath.Join(s.Dir, fmt.Sprintf("%s_results_%s.json", component, date))
}

// Init creates today's document for component if it does not exist yet.
func (s *Store) Init(component string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(component)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	doc := rawDocument{component: json.RawMessage("{}")}
	if err := writeJSON(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// MergeOne sets [component][topDir][name] = rec in today's document.
func (s *Store) MergeOne(component, topDir, name string, rec model.Record) error {
	return s.update(component, func(comp map[string]json.RawMessage) error {
		return mergeDir(comp, topDir, map[string]model.Record{name: rec})
	})
}

// MergeTree sets every record of tree in today's document, keeping entries
// that the tree does not mention.
func (s *Store) MergeTree(component string, tree model.Tree) error {
	return s.update(component, func(comp map[string]json.RawMessage) error {
		for topDir, records := range tree {
			if err := mergeDir(comp, topDir, records); err != nil {
				return err
			}
		}
		return nil
	})
}

// Replace overwrites today's document with {component: tree}.
func (s *Store) Replace(component string, tree model.Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(component)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	if tree == nil {
		tree = model.Tree{}
	}
	return writeJSON(path, model.Document{component: tree})
}

// update runs fn against the component object of today's document under the
// store lock and writes the document back.
func (s *Store) update(component string, fn func(map[string]json.RawMessage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(component)
	doc := load(path, component)

	comp := map[string]json.RawMessage{}
	if raw, ok := doc[component]; ok {
		if err := json.Unmarshal(raw, &comp); err != nil || comp == nil {
			output.Logger.Warn("Component entry is not an object, resetting", "path", path, "component", component)
			comp = map[string]json.RawMessage{}
		}
	}

	if err := fn(comp); err != nil {
		return err
	}

	encoded, err := json.Marshal(comp)
	if err != nil {
		return fmt.Errorf("failed to encode component %s: %w", component, err)
	}
	doc[component] = encoded

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	return writeJSON(path, doc)
}

type rawDocument map[string]json.RawMessage

// load reads path, falling back to {component: {}} when the file is absent
// or not a JSON object.
func load(path, component string) rawDocument {
	fresh := rawDocument{component: json.RawMessage("{}")}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			output.Logger.Warn("Failed to read results document, starting fresh", "path", path, "error", err)
		}
		return fresh
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		output.Logger.Warn("Results document is not valid JSON, starting fresh", "path", path, "error", err)
		return fresh
	}
	return doc
}

// mergeDir sets records under comp[topDir], creating the directory object
// when it is absent or malformed.
func mergeDir(comp map[string]json.RawMessage, topDir string, records map[string]model.Record) error {
	dir := map[string]json.RawMessage{}
	if raw, ok := comp[topDir]; ok {
		if err := json.Unmarshal(raw, &dir); err != nil || dir == nil {
			dir = map[string]json.RawMessage{}
		}
	}
	for name, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %s/%s: %w", topDir, name, err)
		}
		dir[name] = raw
	}

	encoded, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("failed to encode directory %s: %w", topDir, err)
	}
	comp[topDir] = encoded
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Load reads a results document from disk.
func Load(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}
