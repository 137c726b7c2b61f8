/*
PURPOSE:
  Discovers mesh input files under an input root and derives the
  (top_dir, sub_path, name) descriptor used to key results.

REQUIREMENTS:
  User-specified:
  - Recognise .off .obj .ply .stl .ts .vtp, case-insensitively.
  - top_dir is the first directory under the root ("" for files at the root).
  - sub_path is the remaining directories, "/"-terminated ("" if none).

  Implementation-discovered:
  - CI trees carry scratch folders; exclude globs (doublestar) skip them.
  - Single-file mode needs the same descriptor for one path.
  - Symlinked meshes count as files; dot-only stems like ".off" do not.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Uses: internal/model (FileRef)

ERROR HANDLING:
  - A missing or unreadable root is logged and yields no files.
  - Unreadable subdirectories are logged and skipped.
  - Only an invalid exclude pattern is an error.

USAGE:
  refs, err := walker.Discover(root, walker.Options{})

RELATED FILES:
  - internal/engine/runner.go
*/

package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/daryltucker/meshbench/internal/model"
	"github.com/daryltucker/meshbench/internal/output"
)

// DefaultExtensions are the mesh formats benchmarked by CI.
var DefaultExtensions = []string{".off", ".obj", ".ply", ".stl", ".ts", ".vtp"}

// Options tunes discovery.
type Options struct {
	// Extensions overrides DefaultExtensions when non-empty.
	Extensions []string
	// Exclude holds doublestar patterns matched against the
	// slash-separated path relative to the root.
	Exclude []string
}

func (o Options) extensionSet() map[string]bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// Validate checks that every exclude pattern is well-formed.
func (o Options) Validate() error {
	for _, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

func (o Options) excluded(rel string) bool {
	for _, p := range o.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Discover walks root and returns a descriptor for every recognised mesh file.
// Results follow lexical walk order, which callers must not rely on.
func Discover(root string, opts Options) ([]model.FileRef, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		output.Logger.Warn("Input folder not readable, nothing to process", "path", root, "error", err)
		return nil, nil
	}
	if !info.IsDir() {
		output.Logger.Warn("Input folder is not a directory, nothing to process", "path", root)
		return nil, nil
	}

	exts := opts.extensionSet()
	var refs []model.FileRef

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			output.Logger.Warn("Skipping unreadable path", "path", p, "error", err)
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && opts.excluded(rel) {
				output.Logger.Debug("Skipping excluded directory", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !isFile(p, d) {
			return nil
		}
		if !exts[strings.ToLower(meshExt(d.Name()))] {
			return nil
		}
		if opts.excluded(rel) {
			output.Logger.Debug("Skipping excluded file", "path", rel)
			return nil
		}

		ref := Describe(rel)
		ref.Path = p
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input folder %s: %w", root, err)
	}
	return refs, nil
}

// Resolve builds the descriptor for a single file. An empty root means the
// working directory; a file outside it falls back to its own directory,
// which yields an empty top_dir.
func Resolve(root, file string) (model.FileRef, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return model.FileRef{}, fmt.Errorf("failed to resolve %s: %w", file, err)
	}

	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return model.FileRef{}, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		rel, ok := relativeTo(wd, abs)
		if !ok {
			output.Logger.Warn("Input file is outside the working directory, using its own directory", "file", file)
			rel = path.Base(filepath.ToSlash(abs))
		}
		return describeFile(rel, file), nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return model.FileRef{}, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	rel, ok := relativeTo(absRoot, abs)
	if !ok {
		return model.FileRef{}, fmt.Errorf("input file %s is outside input folder %s", file, root)
	}
	return describeFile(rel, file), nil
}

// relativeTo returns the slash-separated path of target under root.
func relativeTo(root, target string) (string, bool) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func describeFile(rel, file string) model.FileRef {
	ref := Describe(rel)
	ref.Path = file
	return ref
}

// isFile reports whether d is a regular file or a symlink to one.
func isFile(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// meshExt is the extension of name, or "" when the stem is empty or only
// dots (".off" is a hidden file, not an OFF mesh).
func meshExt(name string) string {
	ext := path.Ext(name)
	if strings.TrimLeft(strings.TrimSuffix(name, ext), ".") == "" {
		return ""
	}
	return ext
}

// Describe splits a slash-separated relative path into a FileRef.
func Describe(rel string) model.FileRef {
	dir, file := path.Split(rel)

	var parts []string
	for _, seg := range strings.Split(dir, "/") {
		if seg != "" && seg != "." {
			parts = append(parts, seg)
		}
	}

	ref := model.FileRef{Name: strings.TrimSuffix(file, path.Ext(file))}
	if len(parts) > 0 {
		ref.TopDir = parts[0]
	}
	if len(parts) > 1 {
		ref.SubPath = strings.Join(parts[1:], "/") + "/"
	}
	return ref
}
