package reviews

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/syntax"
)

func module(t *testing.T, path, src string) lintel.Module {
	t.Helper()
	tree, err := syntax.ParseFile(context.Background(), path, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return lintel.Module{Path: path, Source: src, Syntax: tree}
}

func TestNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{
		"debug-print", "long-line", "manifest-version",
		"todo-owner", "trailing-whitespace", "unused-dependencies",
	}, Names())
}

func TestNew(t *testing.T) {
	t.Parallel()

	r, err := New(TrailingWhitespaceName, nil)
	require.NoError(t, err)
	assert.Equal(t, TrailingWhitespaceName, r.Name())

	r, err = New("long-line", []string{"*.md"})
	require.NoError(t, err)
	result, _ := r.Run(lintel.ProjectDelta{
		AddedOrChangedExtraFiles: []lintel.ExtraFile{
			{Path: "README.md", Source: strings.Repeat("x", 121)},
			{Path: "notes.txt", Source: strings.Repeat("x", 121)},
		},
	})
	assert.Equal(t, []string{"notes.txt"}, result.Paths())

	_, err = New("no-such-review", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: debug-print")
}

func TestIgnore(t *testing.T) {
	t.Parallel()

	review := Ignore(TrailingWhitespace(), []string{"vendor/", "*.md", "docs/gen/*.txt"})
	result, _ := lintel.New(review).Run(lintel.ProjectDelta{
		AddedOrChangedExtraFiles: []lintel.ExtraFile{
			{Path: "vendor/a.txt", Source: "x \n"},
			{Path: "docs/readme.md", Source: "x \n"},
			{Path: "docs/gen/out.txt", Source: "x \n"},
			{Path: "docs/notes.txt", Source: "x \n"},
		},
	})
	assert.Equal(t, []string{"docs/notes.txt"}, result.Paths())
}

func TestTrailingWhitespace(t *testing.T) {
	t.Parallel()

	src := "a  \nb\t\r\nc\n"
	errs := trailingWhitespace("notes.txt", src)
	require.Len(t, errs, 2)
	assert.Equal(t, lintel.Range{
		Start: lintel.Position{Row: 1, Column: 2},
		End:   lintel.Position{Row: 1, Column: 4},
	}, errs[0].Range)
	assert.Equal(t, lintel.Range{
		Start: lintel.Position{Row: 2, Column: 2},
		End:   lintel.Position{Row: 2, Column: 3},
	}, errs[1].Range)

	fixed, err := lintel.ApplyFixesToErrors(errs, src)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\r\nc\n", fixed)
}

func TestTrailingWhitespace_Clean(t *testing.T) {
	t.Parallel()
	assert.Empty(t, trailingWhitespace("a.txt", "clean\ntext\n"))
}

const goDebugSource = `package main

import "fmt"

func main() {
	fmt.Println("debug")
	x := fmt.Sprintf("%d", 1)
	if true { fmt.Printf("%s", x) }
}
`

func TestDebugPrint_Go(t *testing.T) {
	t.Parallel()

	errs := debugPrints(module(t, "main.go", goDebugSource))
	require.Len(t, errs, 2)

	assert.Equal(t, 6, errs[0].Range.Start.Row)
	assert.Equal(t, 2, errs[0].Range.Start.Column)
	assert.Equal(t, `debug print fmt.Println("debug")`, errs[0].Message)
	require.Len(t, errs[0].Fixes, 1)

	assert.Equal(t, 8, errs[1].Range.Start.Row)
	assert.Empty(t, errs[1].Fixes, "call shares its line with other code")

	fixed, err := lintel.ApplyFixes(errs[0].Fixes, goDebugSource)
	require.NoError(t, err)
	assert.NotContains(t, fixed, "Println")
	assert.Contains(t, fixed, "func main() {\n\tx := fmt.Sprintf")
}

func TestDebugPrint_Python(t *testing.T) {
	t.Parallel()

	errs := debugPrints(module(t, "app.py", "def f():\n    print('x')\n    return 1\n"))
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Range.Start.Row)
	require.Len(t, errs[0].Fixes, 1)

	fixed, err := lintel.ApplyFixes(errs[0].Fixes, "def f():\n    print('x')\n    return 1\n")
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 1\n", fixed)
}

func TestDebugPrint_JavaScript(t *testing.T) {
	t.Parallel()

	errs := debugPrints(module(t, "app.js", "console.log('a');\nconsole.error('b');\n"))
	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Range.Start.Row)
}

func TestDebugPrint_WithoutSyntax(t *testing.T) {
	t.Parallel()
	assert.Empty(t, debugPrints(lintel.Module{Path: "main.go", Source: goDebugSource}))
}

const manifestSource = `[project]
name = "app"

[dependencies]
used = "1.0"
unused = "2.0"
nodocs = "1.0"
`

var dependencies = []lintel.Dependency{
	{Name: "used", Modules: []lintel.ModuleDoc{{Name: "example.com/used"}}},
	{Name: "unused", Modules: []lintel.ModuleDoc{{Name: "example.com/unused"}, {Name: "example.com/extra"}}},
}

func TestUnusedDependencies(t *testing.T) {
	t.Parallel()

	manifest := &lintel.Manifest{Path: "lintel.toml", Source: manifestSource}
	mainGo := module(t, "main.go", "package main\n\nimport \"example.com/used/sub\"\n")

	e := lintel.New(UnusedDependencies())
	result, e := e.Run(lintel.ProjectDelta{
		Manifest:              manifest,
		Dependencies:          dependencies,
		AddedOrChangedModules: []lintel.Module{mainGo},
	})

	errs := result.ErrorsByPath["lintel.toml"]
	require.Len(t, errs, 1)
	assert.Equal(t, `dependency "unused" is declared but never imported`, errs[0].Message)
	assert.Equal(t, lintel.Range{
		Start: lintel.Position{Row: 6, Column: 1},
		End:   lintel.Position{Row: 6, Column: 15},
	}, errs[0].Range)
	assert.Equal(t, []string{"exposed modules: example.com/extra, example.com/unused"}, errs[0].Details)

	fixed, err := lintel.ApplyFixes(errs[0].Fixes, manifestSource)
	require.NoError(t, err)
	assert.NotContains(t, fixed, "unused")
	assert.Contains(t, fixed, "used = \"1.0\"\nnodocs")

	// A new module importing the dependency clears the error...
	result, e = e.Run(lintel.ProjectDelta{
		Manifest:              manifest,
		Dependencies:          dependencies,
		AddedOrChangedModules: []lintel.Module{module(t, "b.go", "package main\n\nimport \"example.com/extra\"\n")},
	})
	assert.Zero(t, result.Count())

	// ...and removing it brings the error back.
	result, _ = e.Run(lintel.ProjectDelta{
		Manifest:           manifest,
		Dependencies:       dependencies,
		RemovedModulePaths: []string{"b.go"},
	})
	assert.Equal(t, 1, result.Count())
}

func TestUnusedDependencies_NoManifest(t *testing.T) {
	t.Parallel()

	result, _ := lintel.New(UnusedDependencies()).Run(lintel.ProjectDelta{
		Dependencies: dependencies,
	})
	assert.Zero(t, result.Count())
}

func TestDeclaredDependencies(t *testing.T) {
	t.Parallel()

	decls := declaredDependencies("[dependencies] # pinned\n\"quoted\" = \"1\"\n# comment\nplain = \"2\"\n\n[dependency-paths]\nplain = \"../plain\"\n")
	require.Len(t, decls, 2)
	assert.Equal(t, declaration{name: "quoted", row: 2, width: 14}, decls[0])
	assert.Equal(t, declaration{name: "plain", row: 4, width: 11}, decls[1])

	assert.Nil(t, declaredDependencies("not [valid toml"))
}

func TestModuleImports_Python(t *testing.T) {
	t.Parallel()

	imports := moduleImports(module(t, "app.py", "import os\nimport numpy as np\nfrom requests.adapters import HTTPAdapter\n"))
	assert.ElementsMatch(t, []string{"os", "numpy", "requests.adapters"}, imports)
}

func TestMergeUsage_Associative(t *testing.T) {
	t.Parallel()

	a := DependencyUsage{manifest: "lintel.toml", declared: []declaration{{name: "x", row: 1}}}
	b := DependencyUsage{exposes: map[string][]string{"x": {"mod/x"}}}
	c := DependencyUsage{imports: []string{"mod/x"}}

	left := mergeUsage(mergeUsage(a, b), c)
	right := mergeUsage(a, mergeUsage(b, c))
	assert.Equal(t, left, right)
	assert.Empty(t, reportUnused(left))
}
