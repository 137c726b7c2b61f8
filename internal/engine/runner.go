/*
PURPOSE:
  High-level runner that orchestrates one aggregation run.
  Walks the input folder -> extracts metrics per mesh -> merges the
  result tree into today's JSON document.

REQUIREMENTS:
  User-specified:
  - Folder mode: every recognised mesh under input_folder.
  - Single-file mode: one mesh, merged into the existing document.
  - Init-only mode: create the dated document and stop.
  - Missing or unreadable logs never abort a run.

  Implementation-discovered:
  - Large CI trees benefit from parallel extraction (workers).
  - Two meshes can share (top_dir, name) in different sub-directories;
    the last one in walk order wins, regardless of worker scheduling.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/walker, internal/extract, internal/store, internal/output

ERROR HANDLING:
  - Per-file problems are logged by the log reader and become N/A / ERROR.
  - A missing input folder is logged by the walker and yields an empty run.
  - Store and export failures are returned.

IMPLEMENTATION RULES:
  - Extraction runs in a conc pool; insertion into the tree is serial.
  - Never write the document from worker goroutines.

USAGE:
  engine.Run(ctx, cfg, extract.DefaultRegistry())

SELF-HEALING INSTRUCTIONS:
  - If results look shuffled, check the index sort in Build.

RELATED FILES:
  - internal/store/store.go
  - internal/walker/walker.go

MAINTENANCE:
  - Update when adding new run modes.
*/

package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/daryltucker/meshbench/internal/config"
	"github.com/daryltucker/meshbench/internal/extract"
	"github.com/daryltucker/meshbench/internal/model"
	"github.com/daryltucker/meshbench/internal/output"
	"github.com/daryltucker/meshbench/internal/store"
	"github.com/daryltucker/meshbench/internal/walker"
	"github.com/sourcegraph/conc/pool"
)

type entry struct {
	index int
	ref   model.FileRef
	rec   model.Record
}

// Build discovers every mesh under root and extracts its metrics with up to
// workers goroutines.
func Build(ctx context.Context, root string, opts walker.Options, proc extract.Processor, workers int) (model.Tree, error) {
	refs, err := walker.Discover(root, opts)
	if err != nil {
		return nil, err
	}
	output.Logger.Info("Discovered meshes", "root", root, "count", len(refs))

	if workers < 1 {
		workers = 1
	}

	p := pool.NewWithResults[entry]().
		WithContext(ctx).
		WithMaxGoroutines(workers)

	for i, ref := range refs {
		p.Go(func(ctx context.Context) (entry, error) {
			if err := ctx.Err(); err != nil {
				return entry{}, err
			}
			output.Logger.Debug("Extracting metrics", "file", ref.Path)
			rec := model.NewRecord(ref.SubPath, proc.Extract(ref.Name))
			return entry{index: i, ref: ref, rec: rec}, nil
		})
	}

	entries, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}

	sort.Slice(entries, func(a, b int) bool { return entries[a].index < entries[b].index })

	tree := model.Tree{}
	for _, e := range entries {
		tree.Insert(e.ref, e.rec)
	}
	return tree, nil
}

// AddOne extracts the metrics of a single mesh and merges them into the
// component's document.
func AddOne(ref model.FileRef, proc extract.Processor, st *store.Store, component string) (model.Record, error) {
	rec := model.NewRecord(ref.SubPath, proc.Extract(ref.Name))
	if err := st.MergeOne(component, ref.TopDir, ref.Name, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Run executes one aggregation run as described by cfg.
func Run(ctx context.Context, cfg *config.Config, reg *extract.Registry) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	st := store.New(cfg.JSONOutput, cfg.JSONFile)
	path, err := st.Init(cfg.Component)
	if err != nil {
		return err
	}

	if cfg.Mode() == config.ModeInit {
		output.Logger.Info("Initialized results document", "path", path, "component", cfg.Component)
		return nil
	}

	schema, err := extract.ParseQualitySchema(cfg.QualitySchema)
	if err != nil {
		return err
	}
	proc, registered := reg.Lookup(cfg.Component, cfg.Source(), schema)
	if !registered {
		output.Logger.Debug("Component not registered, using configured schema", "component", cfg.Component, "schema", schema)
	}

	tree := model.Tree{}

	switch cfg.Mode() {
	case config.ModeSingleFile:
		ref, err := walker.Resolve(cfg.InputFolder, cfg.InputFile)
		if err != nil {
			return err
		}
		rec, err := AddOne(ref, proc, st, cfg.Component)
		if err != nil {
			return err
		}
		tree.Insert(ref, rec)

	default:
		tree, err = Build(ctx, cfg.InputFolder, cfg.WalkOptions(), proc, cfg.Workers)
		if err != nil {
			return err
		}
		if cfg.Fresh {
			err = st.Replace(cfg.Component, tree)
		} else {
			err = st.MergeTree(cfg.Component, tree)
		}
		if err != nil {
			return err
		}
	}

	if cfg.CSVOutput != "" {
		if err := writeCSV(cfg.CSVOutput, cfg.Component, tree); err != nil {
			return err
		}
	}
	if cfg.JSONLOutput != "" {
		if err := writeJSONL(cfg.JSONLOutput, cfg.Component, tree); err != nil {
			return err
		}
	}

	output.Logger.Info("Results written", "path", path, "component", cfg.Component, "records", tree.Len())
	return nil
}

func writeCSV(path, component string, tree model.Tree) error {
	w, err := output.NewCSVWriter(path)
	if err != nil {
		return fmt.Errorf("failed to init CSV writer at %s: %w", path, err)
	}
	defer w.Close()

	if err := w.WriteTree(component, tree); err != nil {
		return fmt.Errorf("failed to write CSV %s: %w", path, err)
	}
	return nil
}

func writeJSONL(path, component string, tree model.Tree) error {
	w, err := output.NewJSONWriter(path)
	if err != nil {
		return fmt.Errorf("failed to init JSON writer at %s: %w", path, err)
	}
	defer w.Close()

	if err := w.WriteTree(component, tree); err != nil {
		return fmt.Errorf("failed to write JSON lines %s: %w", path, err)
	}
	return nil
}
