package reviews

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/syntax"
)

// UnusedDependenciesName is the name of the unused-dependencies review.
const UnusedDependenciesName = "unused-dependencies"

// importQueries capture imported module names as @path.
var importQueries = map[string]string{
	"go": `(import_spec path: (interpreted_string_literal) @path)`,
	"python": `(import_statement name: (dotted_name) @path)
(import_statement name: (aliased_import name: (dotted_name) @path))
(import_from_statement module_name: (dotted_name) @path)`,
	"javascript": `(import_statement source: (string) @path)`,
	"typescript": `(import_statement source: (string) @path)`,
}

// declaration is one entry of the manifest's [dependencies] table.
type declaration struct {
	name  string
	row   int
	width int
}

// DependencyUsage is the knowledge of the unused-dependencies review. Each
// kind of part fills one field: the manifest the declarations, the dependency
// metadata the exposed modules, and every module its imports.
type DependencyUsage struct {
	manifest string
	declared []declaration
	exposes  map[string][]string
	imports  []string
}

// UnusedDependencies reports dependencies declared in the manifest none of
// whose exposed modules is imported by any module. Each error carries a fix
// deleting the declaration line.
func UnusedDependencies() lintel.Review[DependencyUsage] {
	return lintel.NewReview(UnusedDependenciesName, mergeUsage, reportUnused,
		lintel.FromManifest(func(m lintel.Manifest) DependencyUsage {
			return DependencyUsage{manifest: m.Path, declared: declaredDependencies(m.Source)}
		}),
		lintel.FromDependencies(func(deps []lintel.Dependency) DependencyUsage {
			exposes := make(map[string][]string, len(deps))
			for _, d := range deps {
				for _, doc := range d.Modules {
					exposes[d.Name] = append(exposes[d.Name], doc.Name)
				}
			}
			return DependencyUsage{exposes: exposes}
		}),
		lintel.FromModule(func(m lintel.Module) DependencyUsage {
			return DependencyUsage{imports: moduleImports(m)}
		}),
	)
}

func mergeUsage(a, b DependencyUsage) DependencyUsage {
	out := DependencyUsage{manifest: a.manifest}
	if out.manifest == "" {
		out.manifest = b.manifest
	}
	out.declared = append(append([]declaration(nil), a.declared...), b.declared...)
	out.imports = append(append([]string(nil), a.imports...), b.imports...)
	switch {
	case len(a.exposes) == 0:
		out.exposes = b.exposes
	case len(b.exposes) == 0:
		out.exposes = a.exposes
	default:
		out.exposes = make(map[string][]string, len(a.exposes)+len(b.exposes))
		for _, src := range []map[string][]string{a.exposes, b.exposes} {
			for name, mods := range src {
				out.exposes[name] = append(out.exposes[name], mods...)
			}
		}
	}
	return out
}

func reportUnused(u DependencyUsage) []lintel.Error {
	if u.manifest == "" {
		return nil
	}
	var errs []lintel.Error
	for _, d := range u.declared {
		mods := u.exposes[d.name]
		// Without docs there is nothing to check the imports against.
		if len(mods) == 0 || anyImported(mods, u.imports) {
			continue
		}
		sorted := append([]string(nil), mods...)
		sort.Strings(sorted)
		errs = append(errs, lintel.Error{
			Path: u.manifest,
			Range: lintel.Range{
				Start: lintel.Position{Row: d.row, Column: 1},
				End:   lintel.Position{Row: d.row, Column: d.width + 1},
			},
			Message: fmt.Sprintf("dependency %q is declared but never imported", d.name),
			Details: []string{"exposed modules: " + strings.Join(sorted, ", ")},
			Fixes:   []lintel.Fix{lineRemoval(d.row)},
		})
	}
	return errs
}

func anyImported(mods, imports []string) bool {
	for _, imp := range imports {
		for _, mod := range mods {
			if imp == mod || strings.HasPrefix(imp, mod+"/") || strings.HasPrefix(imp, mod+".") {
				return true
			}
		}
	}
	return false
}

// declaredDependencies locates the keys of the [dependencies] table. The
// TOML decoder decides which keys exist; the line scan only finds rows.
func declaredDependencies(source string) []declaration {
	var doc struct {
		Dependencies map[string]any `toml:"dependencies"`
	}
	meta, err := toml.Decode(source, &doc)
	if err != nil {
		return nil
	}

	var decls []declaration
	inTable := false
	for i, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			header, _, _ := strings.Cut(trimmed, "#")
			inTable = strings.TrimSpace(header) == "[dependencies]"
			continue
		}
		if !inTable || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, _, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		name := strings.Trim(strings.TrimSpace(key), `"'`)
		if !meta.IsDefined("dependencies", name) {
			continue
		}
		decls = append(decls, declaration{
			name:  name,
			row:   i + 1,
			width: len(strings.TrimSuffix(line, "\r")),
		})
	}
	return decls
}

func moduleImports(m lintel.Module) []string {
	tree, ok := m.Syntax.(*syntax.Tree)
	if !ok || tree == nil {
		return nil
	}
	pattern, ok := importQueries[tree.Language]
	if !ok {
		return nil
	}
	matches, err := tree.Query(pattern, tree.Root())
	if err != nil {
		return nil
	}
	imports := make([]string, 0, len(matches))
	for _, match := range matches {
		if n := match["path"]; n != nil {
			imports = append(imports, strings.Trim(tree.Text(n), "\"'`"))
		}
	}
	return imports
}
