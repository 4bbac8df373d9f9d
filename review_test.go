package lintel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreErrorsForPathsWhere_IsMonotonic(t *testing.T) {
	t.Parallel()

	base := duplicatesReview().IgnoreErrorsForPathsWhere(func(p string) bool { return p == "gen.src" })
	extended := base.IgnoreErrorsForPathsWhere(func(p string) bool { return p == "other.src" })

	for _, p := range []string{"gen.src", "other.src", "main.src"} {
		if base.ignores(p) {
			assert.True(t, extended.ignores(p), p)
		}
	}
	assert.True(t, extended.ignores("other.src"))
	assert.False(t, base.ignores("other.src"), "the original review is unchanged")
	assert.False(t, extended.ignores("main.src"))
}

func TestIgnoreErrorsForPathsWhere_Nil(t *testing.T) {
	t.Parallel()

	r := duplicatesReview().IgnoreErrorsForPathsWhere(nil)
	assert.False(t, r.ignores("anything"))
}

func TestIgnoreErrorsForDirectories(t *testing.T) {
	t.Parallel()

	r := duplicatesReview().IgnoreErrorsForDirectories("vendor/", "third_party\\lib", "./gen")

	tests := map[string]bool{
		"vendor/a.src":            true,
		"vendor/deep/b.src":       true,
		"third_party/lib/c.src":   true,
		"gen/d.src":               true,
		"vendored/e.src":          false,
		"third_party/other/f.src": false,
		"src/vendor.src":          false,
	}
	for p, want := range tests {
		assert.Equal(t, want, r.ignores(p), p)
	}
}

func TestIgnoreErrorsForFiles(t *testing.T) {
	t.Parallel()

	r := duplicatesReview().IgnoreErrorsForFiles("a.src", "./docs/b.txt")
	assert.True(t, r.ignores("a.src"))
	assert.True(t, r.ignores("docs/b.txt"))
	assert.False(t, r.ignores("c.src"))
}

func TestWithInspectors_CopiesReview(t *testing.T) {
	t.Parallel()

	base := NewReview[int]("count", func(a, b int) int { return a + b }, func(int) []Error { return nil },
		FromModule(func(Module) int { return 1 }),
	)
	extended := base.WithInspectors(
		FromModule(func(Module) int { return 10 }),
		FromExtraFile(func(ExtraFile) int { return 100 }),
		Inspector[int]{},
	)

	assert.Len(t, base.modules, 1)
	assert.Len(t, extended.modules, 2)
	assert.True(t, extended.inspects(kindExtraFile))
	assert.False(t, base.inspects(kindExtraFile))
	assert.False(t, extended.inspects(kindManifest))

	_, e := New(extended).Run(ProjectDelta{AddedOrChangedModules: []Module{{Path: "a"}}})
	k, ok := e.Cache().Module("a")
	assert.True(t, ok)
	assert.Equal(t, 11, k, "inspectors of one kind fold in registration order")
}

func TestInspectorKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "manifest", kindManifest.String())
	assert.Equal(t, "dependencies", kindDependencies.String())
	assert.Equal(t, "extra_file", kindExtraFile.String())
	assert.Equal(t, "module", kindModule.String())
	assert.Equal(t, "unknown", inspectorKind(0).String())
}
