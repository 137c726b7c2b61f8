// Package testutil builds on-disk fixtures for meshbench tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile creates path (and its parents) with content.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteLog writes a benchmark log at
// <resultsDir>/<category>/results/<commit>/<name>.log, one line per entry.
func WriteLog(t testing.TB, resultsDir, category, commit, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(resultsDir, category, "results", commit, name+".log")
	return WriteFile(t, path, strings.Join(lines, "\n")+"\n")
}

// Mesh creates an empty mesh file at root/rel.
func Mesh(t testing.TB, root, rel string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), "")
}

// QualityLines returns eight distinct numeric strings for a named-schema Quality log.
func QualityLines() []string {
	return []string{"30.5", "110.2", "0.81", "1.7", "1.4", "1024", "3", "0.02"}
}
