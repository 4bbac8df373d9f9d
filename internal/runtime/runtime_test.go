package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/syntax"
)

const goTestSource = `package main

import "fmt"

func Greet(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

func Add(a, b int) int {
	return a + b
}

type Server struct {
	Host string
	Port int
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
`

const functionsScript = `
matches := query("(function_declaration name: (identifier) @name)", tree)
out := []
for i := 0; i < len(matches); i++ {
    r := node_range(matches[i]["name"])
    out.append({"row": r["row"], "column": r["column"], "end_row": r["end_row"], "end_column": r["end_column"], "message": "function " + node_text(matches[i]["name"])})
}
out
`

// goModule parses src as a Go module at path.
func goModule(t *testing.T, path, src string) lintel.Module {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), "go", []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return lintel.Module{Path: path, Source: src, Syntax: tree}
}

func runReview(t *testing.T, review lintel.Review[[]lintel.Error], delta lintel.ProjectDelta) lintel.Result {
	t.Helper()
	result, _ := lintel.New(review).Run(delta)
	return result
}

// --- Scripted reviews ---

func TestReview_ModuleScript(t *testing.T) {
	rt := NewRuntime("")
	review, err := rt.Review(Script{Name: "functions", Kind: KindModule, Source: functionsScript})
	require.NoError(t, err)
	assert.Equal(t, "functions", review.Name())

	result := runReview(t, review, lintel.ProjectDelta{
		AddedOrChangedModules: []lintel.Module{goModule(t, "main.go", goTestSource)},
	})

	errs := result.ErrorsByPath["main.go"]
	require.Len(t, errs, 2)
	assert.Equal(t, "function Greet", errs[0].Message)
	assert.Equal(t, "functions", errs[0].Rule)
	assert.Equal(t, lintel.Range{
		Start: lintel.Position{Row: 5, Column: 6},
		End:   lintel.Position{Row: 5, Column: 11},
	}, errs[0].Range)
	assert.Equal(t, "function Add", errs[1].Message)
	assert.Equal(t, 9, errs[1].Range.Start.Row)
}

func TestReview_ExtraFileScript(t *testing.T) {
	rt := NewRuntime("")
	review, err := rt.Review(Script{Name: "no-todo", Kind: KindExtraFile, Source: `
out := []
if strings.contains(source, "TODO") {
    out.append({"row": 1, "column": 1, "message": "TODO in " + path})
}
out
`})
	require.NoError(t, err)

	result := runReview(t, review, lintel.ProjectDelta{
		AddedOrChangedExtraFiles: []lintel.ExtraFile{
			{Path: "docs/a.md", Source: "TODO: write docs\n"},
			{Path: "docs/b.md", Source: "done\n"},
		},
	})

	assert.Equal(t, []string{"docs/a.md"}, result.Paths())
	errs := result.ErrorsByPath["docs/a.md"]
	require.Len(t, errs, 1)
	assert.Equal(t, "TODO in docs/a.md", errs[0].Message)
	assert.Equal(t, errs[0].Range.Start, errs[0].Range.End)
}

func TestReview_ManifestScript(t *testing.T) {
	rt := NewRuntime("")
	review, err := rt.Review(Script{Name: "manifest-path", Kind: KindManifest, Source: `
[{"row": 1, "column": 1, "end_row": 1, "end_column": 2, "message": path}]
`})
	require.NoError(t, err)

	result := runReview(t, review, lintel.ProjectDelta{
		Manifest: &lintel.Manifest{Path: "lintel.toml", Source: "[project]\n"},
	})
	require.Len(t, result.ErrorsByPath["lintel.toml"], 1)
	assert.Equal(t, "lintel.toml", result.ErrorsByPath["lintel.toml"][0].Message)
}

func TestReview_DetailsAndFixes(t *testing.T) {
	rt := NewRuntime("")
	review, err := rt.Review(Script{Name: "rewrite", Kind: KindExtraFile, Source: `
[{"row": 1, "column": 1, "end_row": 1, "end_column": 4, "message": "old word", "details": ["use new"], "fixes": [{"row": 1, "column": 1, "end_row": 1, "end_column": 4, "replacement": "new"}]}]
`})
	require.NoError(t, err)

	result := runReview(t, review, lintel.ProjectDelta{
		AddedOrChangedExtraFiles: []lintel.ExtraFile{{Path: "notes.txt", Source: "old text\n"}},
	})

	errs := result.ErrorsByPath["notes.txt"]
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"use new"}, errs[0].Details)
	require.Len(t, errs[0].Fixes, 1)

	fixed, err := lintel.ApplyFixes(errs[0].Fixes, "old text\n")
	require.NoError(t, err)
	assert.Equal(t, "new text\n", fixed)
}

func TestReview_ScriptFailure(t *testing.T) {
	rt := NewRuntime("")
	review, err := rt.Review(Script{Name: "broken", Kind: KindExtraFile, Source: `undefined_thing + 1`})
	require.NoError(t, err)

	result := runReview(t, review, lintel.ProjectDelta{
		AddedOrChangedExtraFiles: []lintel.ExtraFile{{Path: "a.txt", Source: "x"}},
	})

	errs := result.ErrorsByPath["a.txt"]
	require.Len(t, errs, 1)
	assert.True(t, IsScriptFailure(errs[0]))
	assert.Equal(t, "broken", errs[0].Rule)
}

func TestReview_InvalidFindings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{"not a list", `42`},
		{"item not a map", `[1]`},
		{"missing message", `[{"row": 1, "column": 1}]`},
		{"details not a list", `[{"row": 1, "column": 1, "message": "m", "details": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rt := NewRuntime("")
			review, err := rt.Review(Script{Name: "bad", Kind: KindExtraFile, Source: tt.source})
			require.NoError(t, err)

			result := runReview(t, review, lintel.ProjectDelta{
				AddedOrChangedExtraFiles: []lintel.ExtraFile{{Path: "a.txt", Source: "x"}},
			})
			errs := result.ErrorsByPath["a.txt"]
			require.Len(t, errs, 1)
			assert.True(t, IsScriptFailure(errs[0]))
		})
	}
}

func TestReview_NilResultMeansNoFindings(t *testing.T) {
	rt := NewRuntime("")
	review, err := rt.Review(Script{Name: "quiet", Kind: KindExtraFile, Source: `nil`})
	require.NoError(t, err)

	result := runReview(t, review, lintel.ProjectDelta{
		AddedOrChangedExtraFiles: []lintel.ExtraFile{{Path: "a.txt", Source: "x"}},
	})
	assert.Zero(t, result.Count())
}

func TestReview_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := NewRuntime("").Review(Script{Name: "x", Kind: "dependencies", Source: `nil`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestReview_LoadsScriptFromFS(t *testing.T) {
	mapFS := fstest.MapFS{
		"checks/functions.risor": &fstest.MapFile{Data: []byte(functionsScript)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	review, err := rt.Review(Script{Name: "functions", Kind: KindModule, Path: "checks/functions.risor"})
	require.NoError(t, err)

	result := runReview(t, review, lintel.ProjectDelta{
		AddedOrChangedModules: []lintel.Module{goModule(t, "main.go", goTestSource)},
	})
	assert.Equal(t, 2, result.Count())

	_, err = rt.Review(Script{Name: "missing", Kind: KindModule, Path: "checks/missing.risor"})
	require.Error(t, err)
}

// --- Host functions ---

func TestRunSource_NodeTraversal(t *testing.T) {
	tree, err := syntax.Parse(context.Background(), "go", []byte(goTestSource))
	require.NoError(t, err)
	defer tree.Close()

	rt := NewRuntime("")
	obj, err := rt.RunSource(context.Background(), `
root := module_root
assert(root.Type() == "source_file", "expected source_file")
first := root.NamedChild(0)
assert(first.Type() == "package_clause", "expected package_clause")
fn := root.NamedChild(2)
name := node_child(fn, "name")
missing := node_child(fn, "no_such_field")
[name.Type(), missing == nil]
`, map[string]any{"module_root": mustProxy(tree.Root())})
	require.NoError(t, err)

	list, ok := obj.(*object.List)
	require.True(t, ok)
	require.Len(t, list.Value(), 2)
	typ, ok := list.Value()[0].(*object.String)
	require.True(t, ok)
	assert.Equal(t, "identifier", typ.Value())
	missing, ok := list.Value()[1].(*object.Bool)
	require.True(t, ok)
	assert.True(t, missing.Value())
}

func TestRunSource_QueryWithoutTree(t *testing.T) {
	rt := NewRuntime("")
	_, err := rt.RunSource(context.Background(), `node_text(nil)`, nil)
	require.Error(t, err)
}

func TestRunSource_QueryInvalidPattern(t *testing.T) {
	rt := NewRuntime("")
	review, err := rt.Review(Script{Name: "bad-query", Kind: KindModule, Source: `query("(not_a_real_node_type @x)", tree)`})
	require.NoError(t, err)

	result := runReview(t, review, lintel.ProjectDelta{
		AddedOrChangedModules: []lintel.Module{goModule(t, "main.go", goTestSource)},
	})
	errs := result.ErrorsByPath["main.go"]
	require.Len(t, errs, 1)
	assert.True(t, IsScriptFailure(errs[0]))
}

// --- Script loading ---

func TestLoadScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.risor"), []byte(`x := 1`), 0644))

	rt := NewRuntime(dir)
	src, err := rt.LoadScript("test.risor")
	require.NoError(t, err)
	assert.Equal(t, `x := 1`, src)

	_, err = rt.LoadScript("nonexistent.risor")
	require.Error(t, err)
}

func TestLoadScript_FromFSFS_StripsLeadingSeparator(t *testing.T) {
	t.Parallel()

	mapFS := fstest.MapFS{
		"checks/todo.risor": &fstest.MapFile{Data: []byte(`nil`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	src, err := rt.LoadScript("/checks/todo.risor")
	require.NoError(t, err)
	assert.Equal(t, `nil`, src)

	_, err = rt.LoadScript("checks/other.risor")
	require.Error(t, err)
}

// --- Importer wiring ---

func TestImport_FSImporter(t *testing.T) {
	// Risor's FSImporter resolves "lib_helpers" by trying name + ".risor",
	// so the file must be at the flat path "lib_helpers.risor" in the FS.
	mapFS := fstest.MapFS{
		"lib_helpers.risor": &fstest.MapFile{Data: []byte(`
func greet(name) {
	return "hello " + name
}
`)},
	}

	rt := NewRuntime("", WithRuntimeFS(mapFS))

	_, err := rt.RunSource(context.Background(), `
import lib_helpers

msg := lib_helpers.greet("world")
assert(msg == "hello world", 'expected "hello world", got ' + msg)
`, nil)
	require.NoError(t, err)
}

func TestImport_LocalImporter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math_utils.risor"), []byte(`
func double(x) {
	return x * 2
}
`), 0644))

	rt := NewRuntime(dir)

	_, err := rt.RunSource(context.Background(), `
import math_utils

result := math_utils.double(21)
assert(result == 42, 'expected 42, got {result}')
`, nil)
	require.NoError(t, err)
}

func TestImport_GlobalsAvailableInImportedModules(t *testing.T) {
	// The imported module compiles only if host global names reach the importer.
	mapFS := fstest.MapFS{
		"helper.risor": &fstest.MapFile{Data: []byte(`
func do_log(msg) {
	log.Info(msg)
}
`)},
	}

	rt := NewRuntime("", WithRuntimeFS(mapFS))

	_, err := rt.RunSource(context.Background(), `
import helper
helper.do_log("test message")
`, nil)
	require.NoError(t, err)
}

func TestNewRuntime_Defaults(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("/some/dir")
	require.NotNil(t, rt)
	assert.Nil(t, rt.fsys)
	assert.Equal(t, "/some/dir", rt.scriptsDir)
	assert.Equal(t, defaultTimeout, rt.timeout)
	assert.NotNil(t, rt.logger)
}
