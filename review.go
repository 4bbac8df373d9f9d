package lintel

import (
	"path"
	"strings"
)

// Review is a pluggable analysis unit: inspectors that extract knowledge of
// type K from project parts, an associative merge for that knowledge, a
// report turning the merged knowledge into errors, and a predicate selecting
// paths whose errors are hidden.
//
// Review values are immutable; the With/Ignore methods return modified copies.
type Review[K any] struct {
	name string

	manifest     []func(Manifest) K
	dependencies []func([]Dependency) K
	extraFiles   []func(ExtraFile) K
	modules      []func(Module) K

	merge  func(K, K) K
	report func(K) []Error
	ignore func(path string) bool
}

// NewReview builds a review. merge must be associative: the engine folds
// knowledge from different files in an unspecified order.
func NewReview[K any](name string, merge func(K, K) K, report func(K) []Error, inspectors ...Inspector[K]) Review[K] {
	r := Review[K]{name: name, merge: merge, report: report}
	return r.WithInspectors(inspectors...)
}

// WithInspectors returns a copy of r with additional inspectors registered
// after the existing ones.
func (r Review[K]) WithInspectors(inspectors ...Inspector[K]) Review[K] {
	r.manifest = cloneFuncs(r.manifest)
	r.dependencies = cloneFuncs(r.dependencies)
	r.extraFiles = cloneFuncs(r.extraFiles)
	r.modules = cloneFuncs(r.modules)

	for _, in := range inspectors {
		switch in.kind {
		case kindManifest:
			if in.manifest != nil {
				r.manifest = append(r.manifest, in.manifest)
			}
		case kindDependencies:
			if in.dependencies != nil {
				r.dependencies = append(r.dependencies, in.dependencies)
			}
		case kindExtraFile:
			if in.extraFile != nil {
				r.extraFiles = append(r.extraFiles, in.extraFile)
			}
		case kindModule:
			if in.module != nil {
				r.modules = append(r.modules, in.module)
			}
		}
	}
	return r
}

// Name returns the review's name. Errors reported without a Rule get it.
func (r Review[K]) Name() string {
	return r.name
}

// IgnoreErrorsForPathsWhere returns a copy of r that additionally hides
// errors for every path matching pred. Predicates accumulate with OR, so a
// path ignored once stays ignored.
func (r Review[K]) IgnoreErrorsForPathsWhere(pred func(path string) bool) Review[K] {
	if pred == nil {
		return r
	}
	prev := r.ignore
	if prev == nil {
		r.ignore = pred
		return r
	}
	r.ignore = func(p string) bool {
		return prev(p) || pred(p)
	}
	return r
}

// IgnoreErrorsForDirectories hides errors for files inside any of dirs.
func (r Review[K]) IgnoreErrorsForDirectories(dirs ...string) Review[K] {
	prefixes := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.TrimSuffix(path.Clean(strings.ReplaceAll(d, "\\", "/")), "/")
		prefixes = append(prefixes, d+"/")
	}
	return r.IgnoreErrorsForPathsWhere(func(p string) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(p, prefix) {
				return true
			}
		}
		return false
	})
}

// IgnoreErrorsForFiles hides errors for exactly the given paths.
func (r Review[K]) IgnoreErrorsForFiles(paths ...string) Review[K] {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[path.Clean(p)] = true
	}
	return r.IgnoreErrorsForPathsWhere(func(p string) bool {
		return set[p]
	})
}

// ignores reports whether errors for p are hidden.
func (r Review[K]) ignores(p string) bool {
	return r.ignore != nil && r.ignore(p)
}

// inspects reports whether any inspector of the given kind is registered.
func (r Review[K]) inspects(kind inspectorKind) bool {
	switch kind {
	case kindManifest:
		return len(r.manifest) > 0
	case kindDependencies:
		return len(r.dependencies) > 0
	case kindExtraFile:
		return len(r.extraFiles) > 0
	case kindModule:
		return len(r.modules) > 0
	}
	return false
}

func cloneFuncs[F any](fns []F) []F {
	if fns == nil {
		return nil
	}
	out := make([]F, len(fns))
	copy(out, fns)
	return out
}
