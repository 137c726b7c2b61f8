package engine

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daryltucker/meshbench/internal/config"
	"github.com/daryltucker/meshbench/internal/extract"
	"github.com/daryltucker/meshbench/internal/model"
	"github.com/daryltucker/meshbench/internal/output"
	"github.com/daryltucker/meshbench/internal/store"
	"github.com/daryltucker/meshbench/internal/testutil"
	"github.com/daryltucker/meshbench/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	component = "Alpha_wrap_3"
	commit    = "abc123"
)

type fixture struct {
	meshes  string
	results string
	json    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	prev := output.Logger
	output.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { output.SetLogger(prev) })

	root := t.TempDir()
	return fixture{
		meshes:  filepath.Join(root, "meshes"),
		results: filepath.Join(root, "output"),
		json:    filepath.Join(root, "json"),
	}
}

func (f fixture) config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Component = component
	cfg.InputFolder = f.meshes
	cfg.ResultsDir = f.results
	cfg.JSONOutput = f.json
	cfg.Commit = commit
	return cfg
}

func (f fixture) logs(t *testing.T, name string) {
	t.Helper()
	testutil.WriteLog(t, f.results, extract.CategoryPerformance, commit, name, "1.23", "45.6")
	testutil.WriteLog(t, f.results, extract.CategoryQuality, commit, name, testutil.QualityLines()...)
	testutil.WriteLog(t, f.results, extract.CategoryRobustness, commit, name, "VALID_SOLID_OUTPUT")
}

type document map[string]map[string]map[string]struct {
	Path        string            `json:"path"`
	Performance map[string]string `json:"Performance"`
	Quality     map[string]string `json:"Quality"`
	Robustness  map[string]int    `json:"Robustness"`
}

func readDocument(t *testing.T, path string) document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func todayPath(f fixture) string {
	return store.New(f.json, "").Path(component)
}

func TestRun_FolderMode(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	f.logs(t, "cube")

	require.NoError(t, Run(context.Background(), f.config(), extract.DefaultRegistry()))

	doc := readDocument(t, todayPath(f))
	cube := doc[component]["group_a"]["cube"]
	assert.Equal(t, "", cube.Path)
	assert.Equal(t, map[string]string{"seconds": "1.23", "memory_peaks": "45.6"}, cube.Performance)
	assert.Equal(t, "1.7", cube.Quality["Mean_Edge_Ratio"])
	assert.Len(t, cube.Quality, len(extract.QualityFields))
	assert.Equal(t, map[string]int{"VALID_SOLID_OUTPUT": 1}, cube.Robustness)
}

func TestRun_MissingPerformanceLog(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/deep/sphere.obj")
	testutil.WriteLog(t, f.results, extract.CategoryQuality, commit, "sphere", testutil.QualityLines()...)
	testutil.WriteLog(t, f.results, extract.CategoryRobustness, commit, "sphere", "TIMEOUT")

	require.NoError(t, Run(context.Background(), f.config(), extract.DefaultRegistry()))

	sphere := readDocument(t, todayPath(f))[component]["group_a"]["sphere"]
	assert.Equal(t, "deep/", sphere.Path)
	assert.Equal(t, map[string]string{"seconds": "N/A", "memory_peaks": "N/A"}, sphere.Performance)
	assert.Equal(t, map[string]int{"TIMEOUT": 1}, sphere.Robustness)
}

func TestRun_NoLogsAtAll(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "lonely.stl")

	require.NoError(t, Run(context.Background(), f.config(), extract.DefaultRegistry()))

	lonely := readDocument(t, todayPath(f))[component][""]["lonely"]
	assert.Equal(t, "N/A", lonely.Performance["seconds"])
	for _, v := range lonely.Quality {
		assert.Equal(t, "N/A", v)
	}
	assert.Empty(t, lonely.Robustness)
}

func TestRun_InitOnly(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.InitOnly = true
	cfg.InputFolder = ""

	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	data, err := os.ReadFile(todayPath(f))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Alpha_wrap_3": {}}`, string(data))
}

func TestRun_InvalidInvocation(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.InputFolder = ""

	err := Run(context.Background(), cfg, extract.DefaultRegistry())
	assert.ErrorIs(t, err, config.ErrInvalidInvocation)
	assert.NoFileExists(t, todayPath(f))
}

func TestRun_SingleFileMerges(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	torus := testutil.Mesh(t, f.meshes, "group_b/sub/torus.ply")
	f.logs(t, "cube")
	f.logs(t, "torus")

	require.NoError(t, Run(context.Background(), f.config(), extract.DefaultRegistry()))

	// remove cube's logs: a single-file run must not touch other entries
	require.NoError(t, os.RemoveAll(filepath.Join(f.results, extract.CategoryPerformance)))

	cfg := f.config()
	cfg.SingleFile = true
	cfg.InputFile = torus
	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	doc := readDocument(t, todayPath(f))
	assert.Equal(t, "1.23", doc[component]["group_a"]["cube"].Performance["seconds"])
	assert.Equal(t, "N/A", doc[component]["group_b"]["torus"].Performance["seconds"])
	assert.Equal(t, "sub/", doc[component]["group_b"]["torus"].Path)
}

func TestRun_SingleFileWithoutFolder(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	f.logs(t, "cube")
	t.Chdir(filepath.Dir(f.meshes))

	cfg := f.config()
	cfg.InputFolder = ""
	cfg.SingleFile = true
	cfg.InputFile = filepath.Join("meshes", "group_a", "cube.off")
	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	// measured from the working directory
	cube := readDocument(t, todayPath(f))[component]["meshes"]["cube"]
	assert.Equal(t, "group_a/", cube.Path)
	assert.Equal(t, "1.23", cube.Performance["seconds"])
}

func TestRun_MissingInputFolder(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, Run(context.Background(), f.config(), extract.DefaultRegistry()))

	data, err := os.ReadFile(todayPath(f))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Alpha_wrap_3": {}}`, string(data))
}

func TestRun_FreshReplaces(t *testing.T) {
	f := newFixture(t)
	st := store.New(f.json, "")
	require.NoError(t, st.MergeOne(component, "stale", "old", model.Record{}))
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	f.logs(t, "cube")

	cfg := f.config()
	cfg.Fresh = true
	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	doc := readDocument(t, todayPath(f))
	assert.NotContains(t, doc[component], "stale")
	assert.Contains(t, doc[component], "group_a")
}

func TestRun_JSONFilePrefix(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	f.logs(t, "cube")

	cfg := f.config()
	cfg.JSONOutput = ""
	cfg.JSONFile = filepath.Join(f.json, "alpha")
	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	doc := readDocument(t, store.New("", cfg.JSONFile).Path(component))
	assert.Contains(t, doc[component]["group_a"], "cube")
}

func TestRun_CSVExport(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	f.logs(t, "cube")

	cfg := f.config()
	cfg.CSVOutput = filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	file, err := os.Open(cfg.CSVOutput)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{component, "group_a", "", "cube"}, rows[1][:4])
}

func TestRun_JSONLinesExport(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	testutil.Mesh(t, f.meshes, "group_b/torus.off")
	f.logs(t, "cube")

	cfg := f.config()
	cfg.JSONLOutput = filepath.Join(t.TempDir(), "results.jsonl")
	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	data, err := os.ReadFile(cfg.JSONLOutput)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "group_a", first["dataset"])
	assert.Equal(t, "cube", first["file"])
	assert.Equal(t, component, first["component"])
}

func TestRun_GenericSchemaForUnregisteredComponent(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")
	testutil.WriteLog(t, f.results, extract.CategoryQuality, commit, "cube", "0.5", "", "7")

	cfg := f.config()
	cfg.Component = "Other_component"
	cfg.QualitySchema = "generic"
	require.NoError(t, Run(context.Background(), cfg, extract.DefaultRegistry()))

	doc := readDocument(t, store.New(f.json, "").Path("Other_component"))
	assert.Equal(t,
		map[string]string{"metric_1": "0.5", "metric_3": "7"},
		doc["Other_component"]["group_a"]["cube"].Quality)
}

func TestBuild_LastInWalkOrderWins(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/a/dup.off")
	testutil.Mesh(t, f.meshes, "group_a/b/dup.off")
	for i := 0; i < 20; i++ {
		testutil.Mesh(t, f.meshes, filepath.Join("group_a", "c", "m"+string(rune('a'+i))+".off"))
	}

	tree, err := Build(context.Background(), f.meshes, walker.Options{}, extract.NewExtractor(extract.Source{}, extract.SchemaNamed), 8)
	require.NoError(t, err)
	assert.Equal(t, 21, tree.Len())
	assert.Equal(t, "b/", tree["group_a"]["dup"].Path)
}

func TestBuild_Cancelled(t *testing.T) {
	f := newFixture(t)
	testutil.Mesh(t, f.meshes, "group_a/cube.off")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, f.meshes, walker.Options{}, extract.NewExtractor(extract.Source{}, extract.SchemaNamed), 2)
	assert.Error(t, err)
}

func TestBuild_MissingRoot(t *testing.T) {
	f := newFixture(t)
	tree, err := Build(context.Background(), f.meshes, walker.Options{}, extract.NewExtractor(extract.Source{}, extract.SchemaNamed), 1)
	require.NoError(t, err)
	assert.Zero(t, tree.Len())
}

func TestBuild_InvalidExclude(t *testing.T) {
	f := newFixture(t)
	_, err := Build(context.Background(), f.meshes, walker.Options{Exclude: []string{"[x"}}, extract.NewExtractor(extract.Source{}, extract.SchemaNamed), 1)
	assert.Error(t, err)
}
