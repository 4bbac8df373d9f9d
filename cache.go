package lintel

import "sort"

// Cache holds the knowledge a review extracted during its last run, per
// project part. A Cache is never modified after it is built: each run
// derives a new one, so older values stay valid and may be kept as forks.
type Cache[K any] struct {
	manifest     optional[K]
	dependencies optional[K]
	modules      map[string]K
	extraFiles   map[string]K
}

// Manifest returns the cached manifest knowledge.
func (c Cache[K]) Manifest() (K, bool) {
	return c.manifest.value, c.manifest.ok
}

// Dependencies returns the cached dependency knowledge.
func (c Cache[K]) Dependencies() (K, bool) {
	return c.dependencies.value, c.dependencies.ok
}

// Module returns the cached knowledge for the module at path.
func (c Cache[K]) Module(path string) (K, bool) {
	k, ok := c.modules[path]
	return k, ok
}

// ExtraFile returns the cached knowledge for the extra file at path.
func (c Cache[K]) ExtraFile(path string) (K, bool) {
	k, ok := c.extraFiles[path]
	return k, ok
}

// ModulePaths returns the paths with cached module knowledge, sorted.
func (c Cache[K]) ModulePaths() []string {
	return sortedKeys(c.modules)
}

// ExtraFilePaths returns the paths with cached extra-file knowledge, sorted.
func (c Cache[K]) ExtraFilePaths() []string {
	return sortedKeys(c.extraFiles)
}

// IsEmpty reports whether the cache holds no knowledge at all.
func (c Cache[K]) IsEmpty() bool {
	return !c.manifest.ok && !c.dependencies.ok && len(c.modules) == 0 && len(c.extraFiles) == 0
}

// aggregate folds all cached knowledge in kind order: manifest,
// dependencies, modules, extra files. Within a kind the order is by path.
func (c Cache[K]) aggregate(merge func(K, K) K) (K, bool) {
	f := newFolder(merge)
	f.addOptional(c.manifest)
	f.addOptional(c.dependencies)
	for _, p := range c.ModulePaths() {
		f.add(c.modules[p])
	}
	for _, p := range c.ExtraFilePaths() {
		f.add(c.extraFiles[p])
	}
	return f.result()
}

// partUpdate describes how one per-file map of a cache changes in a run.
type partUpdate[K any] struct {
	removed  []string
	computed []extracted[K]
}

// extracted is the knowledge computed for one file; ok is false when the
// review has no inspector for that kind of file.
type extracted[K any] struct {
	path  string
	value K
	ok    bool
}

// partStats counts what happened to a per-file map during a run.
type partStats struct {
	recomputed int
	reused     int
	dropped    int
}

// apply derives the next per-file map from prev. Removals are applied
// before additions, so a path both removed and re-added ends up present.
// prev is left untouched.
func (u partUpdate[K]) apply(prev map[string]K) (map[string]K, partStats) {
	touched := make(map[string]bool, len(u.removed)+len(u.computed))
	for _, p := range u.removed {
		touched[p] = true
	}
	for _, x := range u.computed {
		touched[x.path] = true
	}

	next := make(map[string]K, len(prev)+len(u.computed))
	var stats partStats
	for p, k := range prev {
		if touched[p] {
			continue
		}
		next[p] = k
		stats.reused++
	}
	for _, p := range u.removed {
		if _, ok := prev[p]; ok {
			stats.dropped++
		}
	}
	for _, x := range u.computed {
		if !x.ok {
			continue
		}
		next[x.path] = x.value
		stats.recomputed++
	}
	return next, stats
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
