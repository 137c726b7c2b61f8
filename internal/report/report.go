/*
PURPOSE:
  Reads the dated result documents of a JSON output directory and
  summarises them per component, optionally against an earlier day.

REQUIREMENTS:
  User-specified:
  - Valid / Error / Timeout classification from Robustness flags.
  - Per-component counts, dataset and file totals.
  - Comparison shows files that entered (+) or left (-) each category.

  Implementation-discovered:
  - A file is identified by dataset, path and name, so equal names in
    two datasets are two files.
  - Documents with or without the component wrapper are both accepted.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (summary)
  - Uses: internal/store (DateLayout), internal/model (flags)

ERROR HANDLING:
  - Unreadable directory or no document for the date is an error.
  - A corrupt document is logged and skipped.

USAGE:
  cur, err := report.LoadDate(dir, "2024-03-07")
  fmt.Print(report.Render(report.Summarize(cur, nil)))

RELATED FILES:
  - internal/report/render.go
  - internal/store/store.go
*/

// Package report summarises the dated result documents of a JSON output
// directory: per-component outcome counts and the change against an
// earlier date.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/daryltucker/meshbench/internal/model"
	"github.com/daryltucker/meshbench/internal/output"
	"github.com/daryltucker/meshbench/internal/store"
)

var resultFile = regexp.MustCompile(`^(.+)_results_(\d{4}-\d{2}-\d{2})\.json$`)

// Category groups Robustness outcomes for the summary.
type Category int

const (
	Uncategorized Category = iota
	Valid
	Error
	Timeout
)

// Classify maps a record's Robustness flags onto a summary category.
func Classify(flags map[string]int) Category {
	switch {
	case flags[string(model.ValidSolidOutput)] == 1:
		return Valid
	case flags[string(model.InputIsInvalid)] == 1, flags[string(model.OutputDistanceIsTooLarge)] == 1:
		return Error
	case flags[string(model.Timeout)] == 1:
		return Timeout
	}
	return Uncategorized
}

// File is one record as seen by the summary.
type File struct {
	Dataset  string
	Category Category
}

// Component is the content of one component's document.
type Component struct {
	Name string
	// Files is keyed by FileKey(dataset, path, name).
	Files map[string]File
}

// Snapshot is every component document of one date.
type Snapshot struct {
	Date       string
	Components map[string]*Component
}

// Dates lists the dates with at least one result document in dir, oldest first.
func Dates(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*_results_*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	seen := map[string]bool{}
	var dates []string
	for _, m := range matches {
		sub := resultFile.FindStringSubmatch(m)
		if sub == nil || seen[sub[2]] {
			continue
		}
		seen[sub[2]] = true
		dates = append(dates, sub[2])
	}
	sort.Strings(dates)
	return dates, nil
}

// LoadDate reads every <component>_results_<date>.json in dir.
// Unreadable documents are logged and skipped.
func LoadDate(dir, date string) (*Snapshot, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*_results_"+date+".json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no result documents for %s in %s", date, dir)
	}

	snap := &Snapshot{Date: date, Components: map[string]*Component{}}
	for _, m := range matches {
		sub := resultFile.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		name := sub[1]
		doc, err := store.Load(filepath.Join(dir, m))
		if err != nil {
			output.Logger.Warn("Skipping unreadable results document", "file", m, "error", err)
			continue
		}
		snap.Components[name] = decodeComponent(name, doc)
	}
	return snap, nil
}

// FileKey identifies a file across dates: the same name may appear in
// several datasets.
func FileKey(dataset, path, name string) string {
	return dataset + "/" + path + name
}

type summaryRecord struct {
	Path       string         `json:"path"`
	Robustness map[string]int `json:"Robustness"`
}

// decodeComponent uses doc[name] when present, else the whole document.
func decodeComponent(name string, doc map[string]json.RawMessage) *Component {
	datasets := doc
	if raw, ok := doc[name]; ok {
		datasets = map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &datasets); err != nil {
			output.Logger.Warn("Component entry is not an object", "component", name)
		}
	}

	c := &Component{Name: name, Files: map[string]File{}}
	for dataset, raw := range datasets {
		var files map[string]json.RawMessage
		if err := json.Unmarshal(raw, &files); err != nil {
			continue
		}
		for fileName, rawRec := range files {
			var rec summaryRecord
			if err := json.Unmarshal(rawRec, &rec); err != nil {
				continue
			}
			c.Files[FileKey(dataset, rec.Path, fileName)] = File{Dataset: dataset, Category: Classify(rec.Robustness)}
		}
	}
	return c
}

// Counts holds the number of files per category.
type Counts struct {
	Valid   int
	Error   int
	Timeout int
}

func (c *Counts) add(cat Category, n int) {
	switch cat {
	case Valid:
		c.Valid += n
	case Error:
		c.Error += n
	case Timeout:
		c.Timeout += n
	}
}

// Delta is the change of a component against a baseline date.
type Delta struct {
	Added   Counts
	Removed Counts
}

// ComponentSummary is one row of the summary.
type ComponentSummary struct {
	Name     string
	Counts   Counts
	Datasets int
	Files    int
	// Delta is nil when no baseline was given.
	Delta *Delta
}

// Summary is the report for one date.
type Summary struct {
	Date       string
	Baseline   string
	Components []ComponentSummary
	// Datasets and Files are unique across all components.
	Datasets int
	Files    int
}

// Summarize counts cur and, when base is non-nil, compares it against base.
func Summarize(cur, base *Snapshot) Summary {
	s := Summary{Date: cur.Date}
	if base != nil {
		s.Baseline = base.Date
	}

	names := make([]string, 0, len(cur.Components))
	for n := range cur.Components {
		names = append(names, n)
	}
	sort.Strings(names)

	allDatasets := map[string]bool{}
	allFiles := map[string]bool{}

	for _, n := range names {
		comp := cur.Components[n]
		row := ComponentSummary{Name: n}
		datasets := map[string]bool{}
		for key, f := range comp.Files {
			row.Counts.add(f.Category, 1)
			datasets[f.Dataset] = true
			allDatasets[f.Dataset] = true
			allFiles[key] = true
		}
		row.Datasets = len(datasets)
		row.Files = len(comp.Files)

		if base != nil {
			var prev *Component
			if prev = base.Components[n]; prev == nil {
				prev = &Component{Name: n}
			}
			d := compare(comp, prev)
			row.Delta = &d
		}
		s.Components = append(s.Components, row)
	}

	s.Datasets = len(allDatasets)
	s.Files = len(allFiles)
	return s
}

// compare counts files that entered or left each category.
func compare(cur, base *Component) Delta {
	var d Delta
	for key, f := range cur.Files {
		if old, ok := base.Files[key]; !ok || old.Category != f.Category {
			d.Added.add(f.Category, 1)
		}
	}
	for key, f := range base.Files {
		if now, ok := cur.Files[key]; !ok || now.Category != f.Category {
			d.Removed.add(f.Category, 1)
		}
	}
	return d
}

// Previous returns the latest date in dates strictly before date.
func Previous(dates []string, date string) (string, bool) {
	i := sort.SearchStrings(dates, date)
	if i == 0 {
		return "", false
	}
	return dates[i-1], true
}

func formatCount(n int, added, removed *int) string {
	if added == nil {
		return fmt.Sprint(n)
	}
	var parts []string
	if *added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", *added))
	}
	if *removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", *removed))
	}
	if len(parts) == 0 {
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("%d (%s)", n, strings.Join(parts, " "))
}
