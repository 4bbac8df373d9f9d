package lintel

import (
	"log/slog"
	"time"
)

// Engine runs one review incrementally. It pairs the review with the cache
// of its last run; Run returns the errors for a delta together with the
// Engine to use for the next delta. An Engine is never modified, so keeping
// an older value and running it again is safe.
type Engine[K any] struct {
	review Review[K]
	cache  Cache[K]
	opts   options
}

type options struct {
	parallelism int
	logger      *slog.Logger
	metrics     *Metrics
}

// Option configures an Engine.
type Option func(*options)

// WithParallelism extracts per-file knowledge on up to n goroutines.
// n <= 1 keeps extraction serial, which is the default.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLogger sets the logger receiving per-run debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records cache and run counters in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates an Engine with an empty cache.
func New[K any](review Review[K], opts ...Option) *Engine[K] {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[K]{review: review, opts: o}
}

// Review returns the review this engine runs.
func (e *Engine[K]) Review() Review[K] {
	return e.review
}

// Cache returns the knowledge cached by the last run.
func (e *Engine[K]) Cache() Cache[K] {
	return e.cache
}

// runStats summarizes the work done by one run.
type runStats struct {
	manifest     bool
	dependencies bool
	modules      partStats
	extraFiles   partStats
}

// Run processes delta and returns the resulting errors along with the
// engine holding the updated cache.
//
// Manifest and dependency knowledge is recomputed on every run. Module and
// extra-file knowledge is recomputed only for the files the delta lists as
// added or changed; other files keep their cached knowledge and removed
// files lose it. The errors are the same a fresh engine would report for
// the cumulative project state.
func (e *Engine[K]) Run(delta ProjectDelta) (Result, *Engine[K]) {
	start := time.Now()
	r := e.review
	var stats runStats

	var next Cache[K]
	if delta.Manifest != nil {
		next.manifest = some[K](extract(r.manifest, *delta.Manifest, r.merge))
	}
	next.dependencies = some[K](extract(r.dependencies, delta.Dependencies, r.merge))
	stats.manifest = next.manifest.ok
	stats.dependencies = next.dependencies.ok

	modules := partUpdate[K]{removed: delta.RemovedModulePaths}
	if r.inspects(kindModule) {
		modules.computed = extractAll(delta.AddedOrChangedModules, moduleKey, r.modules, r.merge, e.opts.parallelism)
	}
	next.modules, stats.modules = modules.apply(e.cache.modules)

	extraFiles := partUpdate[K]{removed: delta.RemovedExtraFilePaths}
	if r.inspects(kindExtraFile) {
		extraFiles.computed = extractAll(delta.AddedOrChangedExtraFiles, extraFileKey, r.extraFiles, r.merge, e.opts.parallelism)
	}
	next.extraFiles, stats.extraFiles = extraFiles.apply(e.cache.extraFiles)

	result := Result{ErrorsByPath: map[string][]Error{}}
	knowledge, ok := next.aggregate(r.merge)
	if ok {
		result = buildResult(r, r.report(knowledge))
	} else {
		next = Cache[K]{}
	}

	elapsed := time.Since(start)
	e.opts.metrics.observe(r.name, stats, result.Count(), elapsed)
	e.opts.logger.Debug("review run",
		"review", r.name,
		"modules_recomputed", stats.modules.recomputed,
		"modules_reused", stats.modules.reused,
		"modules_dropped", stats.modules.dropped,
		"extra_files_recomputed", stats.extraFiles.recomputed,
		"extra_files_reused", stats.extraFiles.reused,
		"extra_files_dropped", stats.extraFiles.dropped,
		"errors", result.Count(),
		"duration", elapsed,
	)

	return result, &Engine[K]{review: r, cache: next, opts: e.opts}
}

func moduleKey(m Module) string       { return m.Path }
func extraFileKey(f ExtraFile) string { return f.Path }
