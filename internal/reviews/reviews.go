// Package reviews holds the built-in reviews and the registry the CLI uses
// to construct them by name.
package reviews

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/runtime"
	"github.com/jward/lintel/scripts"
)

type constructor func(ignore []string, opts ...lintel.Option) (lintel.Runner, error)

var builtins = map[string]constructor{
	UnusedDependenciesName: func(ignore []string, opts ...lintel.Option) (lintel.Runner, error) {
		return lintel.NewRunner(Ignore(UnusedDependencies(), ignore), opts...), nil
	},
	DebugPrintName: func(ignore []string, opts ...lintel.Option) (lintel.Runner, error) {
		return lintel.NewRunner(Ignore(DebugPrint(), ignore), opts...), nil
	},
	TrailingWhitespaceName: func(ignore []string, opts ...lintel.Option) (lintel.Runner, error) {
		return lintel.NewRunner(Ignore(TrailingWhitespace(), ignore), opts...), nil
	},
}

// Embedded scripted reviews register next to the Go ones and load their
// source on construction.
func init() {
	rt := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS))
	for _, s := range scripts.Reviews {
		builtins[s.Name] = func(ignore []string, opts ...lintel.Option) (lintel.Runner, error) {
			review, err := rt.Review(s)
			if err != nil {
				return nil, fmt.Errorf("reviews: %w", err)
			}
			return lintel.NewRunner(Ignore(review, ignore), opts...), nil
		}
	}
}

// Names returns the names of all built-in reviews, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the built-in review called name as a Runner. Errors for
// paths matching any of the ignore patterns are hidden (see Ignore).
func New(name string, ignore []string, opts ...lintel.Option) (lintel.Runner, error) {
	c, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("reviews: unknown review %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return c(ignore, opts...)
}

// Ignore hides errors of r for paths matching any pattern. A pattern ending
// in "/" names a directory; anything else is a path.Match glob tried against
// the full path and against its base name.
func Ignore[K any](r lintel.Review[K], patterns []string) lintel.Review[K] {
	var dirs, globs []string
	for _, p := range patterns {
		if strings.HasSuffix(p, "/") {
			dirs = append(dirs, p)
		} else {
			globs = append(globs, p)
		}
	}
	if len(dirs) > 0 {
		r = r.IgnoreErrorsForDirectories(dirs...)
	}
	if len(globs) > 0 {
		r = r.IgnoreErrorsForPathsWhere(func(p string) bool {
			for _, g := range globs {
				if ok, _ := path.Match(g, p); ok {
					return true
				}
				if ok, _ := path.Match(g, path.Base(p)); ok {
					return true
				}
			}
			return false
		})
	}
	return r
}

// concat merges error-list knowledge without aliasing either input.
func concat(a, b []lintel.Error) []lintel.Error {
	out := make([]lintel.Error, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func identity(errs []lintel.Error) []lintel.Error {
	return errs
}

// lineRemoval removes row entirely, including its line break.
func lineRemoval(row int) lintel.Fix {
	return lintel.Removal(lintel.Range{
		Start: lintel.Position{Row: row, Column: 1},
		End:   lintel.Position{Row: row + 1, Column: 1},
	})
}
