// Package lintel is an incremental static-analysis engine. It runs pluggable
// reviews over a project made of modules, a manifest, dependency metadata
// and extra text files, and reports errors that may carry automated fixes.
//
// # Reviews
//
// A [Review] bundles inspectors, a merge function and a report function for
// one knowledge type K:
//
//	review := lintel.NewReview("no-todo",
//		func(a, b []lintel.Error) []lintel.Error { return append(append([]lintel.Error{}, a...), b...) },
//		func(errs []lintel.Error) []lintel.Error { return errs },
//		lintel.FromModule(findTodos),
//	)
//
// Inspectors extract knowledge from one kind of project part: see
// [FromManifest], [FromDependencies], [FromExtraFile] and [FromModule].
// Knowledge from every part is folded with the merge function, which must
// be associative, and the result is handed once to the report function.
//
// # Incremental runs
//
// An [Engine] pairs a review with the knowledge cached by its previous run:
//
//	e := lintel.New(review)
//	result, e := e.Run(fullDelta)
//	// ... files change ...
//	result, e = e.Run(lintel.ProjectDelta{
//		Manifest:              manifest,
//		AddedOrChangedModules: changed,
//		RemovedModulePaths:    removed,
//	})
//
// Only the added or changed files are inspected again; the errors are the
// same a fresh engine would report for the whole project. Engines are
// immutable values: Run returns the engine for the next delta. Reviews with
// different knowledge types are combined by erasing them to [Runner] values
// and running them in a [Suite].
//
// # Fixes
//
// [ApplyFixes] splices the fixes of an error into the current source of its
// file. Overlapping fixes fail with [ErrCollisionDetected]; fixes that leave
// the text unchanged fail with [ErrResultUnchanged].
package lintel
