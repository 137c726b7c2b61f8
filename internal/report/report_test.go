package report

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/daryltucker/meshbench/internal/output"
	"github.com/daryltucker/meshbench/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day1 = `{
    "Alpha_wrap_3": {
        "group_a": {
            "cube":   {"path": "", "Robustness": {"VALID_SOLID_OUTPUT": 1}},
            "sphere": {"path": "deep/", "Robustness": {"TIMEOUT": 1}},
            "torus":  {"path": "", "Robustness": {"INPUT_IS_INVALID": 1}}
        },
        "group_b": {
            "bunny":  {"path": "", "Robustness": {}}
        }
    }
}`

const day2 = `{
    "Alpha_wrap_3": {
        "group_a": {
            "cube":   {"path": "", "Robustness": {"VALID_SOLID_OUTPUT": 1}},
            "sphere": {"path": "deep/", "Robustness": {"VALID_SOLID_OUTPUT": 1}},
            "torus":  {"path": "", "Robustness": {"OUTPUT_DISTANCE_IS_TOO_LARGE": 1}}
        },
        "group_c": {
            "knot":   {"path": "", "Robustness": {"TIMEOUT": 1}},
            "broken": "not a record"
        }
    }
}`

func quietLogs(t *testing.T) {
	t.Helper()
	prev := output.Logger
	output.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { output.SetLogger(prev) })
}

func writeDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "Alpha_wrap_3_results_2024-03-06.json"), day1)
	testutil.WriteFile(t, filepath.Join(dir, "Alpha_wrap_3_results_2024-03-07.json"), day2)
	testutil.WriteFile(t, filepath.Join(dir, "Mesh_repair_results_2024-03-07.json"), `{
        "ds": {"a": {"path": "", "Robustness": {"VALID_SOLID_OUTPUT": 1}}}
    }`)
	testutil.WriteFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	return dir
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Valid, Classify(map[string]int{"VALID_SOLID_OUTPUT": 1}))
	assert.Equal(t, Error, Classify(map[string]int{"INPUT_IS_INVALID": 1}))
	assert.Equal(t, Error, Classify(map[string]int{"OUTPUT_DISTANCE_IS_TOO_LARGE": 1}))
	assert.Equal(t, Timeout, Classify(map[string]int{"TIMEOUT": 1}))
	assert.Equal(t, Uncategorized, Classify(map[string]int{"SIGSEGV": 1}))
	assert.Equal(t, Uncategorized, Classify(nil))
}

func TestDates(t *testing.T) {
	dates, err := Dates(writeDocs(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-06", "2024-03-07"}, dates)
}

func TestLoadDate(t *testing.T) {
	dir := writeDocs(t)

	snap, err := LoadDate(dir, "2024-03-07")
	require.NoError(t, err)
	require.Contains(t, snap.Components, "Alpha_wrap_3")
	require.Contains(t, snap.Components, "Mesh_repair")

	alpha := snap.Components["Alpha_wrap_3"]
	assert.Len(t, alpha.Files, 4)
	assert.Equal(t, File{Dataset: "group_a", Category: Valid}, alpha.Files[FileKey("group_a", "deep/", "sphere")])

	// document without a component wrapper is read as-is
	assert.Equal(t, File{Dataset: "ds", Category: Valid}, snap.Components["Mesh_repair"].Files[FileKey("ds", "", "a")])

	_, err = LoadDate(dir, "1999-01-01")
	assert.Error(t, err)
}

func TestLoadDate_SkipsCorruptDocument(t *testing.T) {
	quietLogs(t)
	dir := writeDocs(t)
	testutil.WriteFile(t, filepath.Join(dir, "Broken_results_2024-03-07.json"), "{nope")

	snap, err := LoadDate(dir, "2024-03-07")
	require.NoError(t, err)
	assert.NotContains(t, snap.Components, "Broken")
	assert.Contains(t, snap.Components, "Alpha_wrap_3")
}

func TestSummarize(t *testing.T) {
	dir := writeDocs(t)
	cur, err := LoadDate(dir, "2024-03-07")
	require.NoError(t, err)

	s := Summarize(cur, nil)
	require.Len(t, s.Components, 2)

	alpha := s.Components[0]
	assert.Equal(t, "Alpha_wrap_3", alpha.Name)
	assert.Equal(t, Counts{Valid: 2, Error: 1, Timeout: 1}, alpha.Counts)
	assert.Equal(t, 2, alpha.Datasets)
	assert.Equal(t, 4, alpha.Files)
	assert.Nil(t, alpha.Delta)

	assert.Equal(t, 3, s.Datasets)
	// "ds/a" from Mesh_repair plus four Alpha_wrap_3 files
	assert.Equal(t, 5, s.Files)
}

func TestSummarize_SameNameInTwoDatasets(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "Alpha_wrap_3_results_2024-03-07.json"), `{
        "Alpha_wrap_3": {
            "a": {"cube": {"path": "", "Robustness": {"VALID_SOLID_OUTPUT": 1}}},
            "b": {"cube": {"path": "", "Robustness": {"TIMEOUT": 1}}}
        }
    }`)
	cur, err := LoadDate(dir, "2024-03-07")
	require.NoError(t, err)

	s := Summarize(cur, nil)
	require.Len(t, s.Components, 1)
	assert.Equal(t, Counts{Valid: 1, Timeout: 1}, s.Components[0].Counts)
	assert.Equal(t, 2, s.Components[0].Files)
	assert.Equal(t, 2, s.Components[0].Datasets)
	assert.Equal(t, 2, s.Files)

	// a file moving between datasets is both removed and added
	base := &Snapshot{Date: "2024-03-06", Components: map[string]*Component{
		"Alpha_wrap_3": {Name: "Alpha_wrap_3", Files: map[string]File{
			FileKey("a", "", "cube"): {Dataset: "a", Category: Valid},
			FileKey("c", "", "cube"): {Dataset: "c", Category: Timeout},
		}},
	}}
	d := Summarize(cur, base).Components[0].Delta
	require.NotNil(t, d)
	assert.Equal(t, Counts{Timeout: 1}, d.Added)
	assert.Equal(t, Counts{Timeout: 1}, d.Removed)
}

func TestSummarize_Compare(t *testing.T) {
	dir := writeDocs(t)
	cur, err := LoadDate(dir, "2024-03-07")
	require.NoError(t, err)
	base, err := LoadDate(dir, "2024-03-06")
	require.NoError(t, err)

	s := Summarize(cur, base)
	assert.Equal(t, "2024-03-06", s.Baseline)

	alpha := s.Components[0]
	require.NotNil(t, alpha.Delta)
	// sphere became valid, knot is a new timeout, torus stayed an error
	assert.Equal(t, Counts{Valid: 1, Timeout: 1}, alpha.Delta.Added)
	// sphere left timeout
	assert.Equal(t, Counts{Timeout: 1}, alpha.Delta.Removed)

	// component absent from the baseline: everything is added
	repair := s.Components[1]
	assert.Equal(t, Counts{Valid: 1}, repair.Delta.Added)
	assert.Equal(t, Counts{}, repair.Delta.Removed)
}

func TestPrevious(t *testing.T) {
	dates := []string{"2024-03-04", "2024-03-06", "2024-03-07"}

	prev, ok := Previous(dates, "2024-03-07")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-06", prev)

	prev, ok = Previous(dates, "2024-03-05")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-04", prev)

	_, ok = Previous(dates, "2024-03-04")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	dir := writeDocs(t)
	cur, err := LoadDate(dir, "2024-03-07")
	require.NoError(t, err)
	base, err := LoadDate(dir, "2024-03-06")
	require.NoError(t, err)

	out := Render(Summarize(cur, base))
	assert.Contains(t, out, "Results 2024-03-07 (compared to 2024-03-06)")
	assert.Contains(t, out, "Component")
	assert.Contains(t, out, "Alpha_wrap_3")
	assert.Contains(t, out, "2 (+1)")
	assert.Contains(t, out, "1 (+1 -1)")
	assert.Contains(t, out, "Total: 3 datasets, 5 files")
}

func TestRows_NoBaseline(t *testing.T) {
	rows := Rows(Summary{Components: []ComponentSummary{
		{Name: "X", Counts: Counts{Valid: 3}, Datasets: 1, Files: 4},
	}})
	assert.Equal(t, [][]string{{"X", "3", "0", "0", "1", "4"}}, rows)
}
