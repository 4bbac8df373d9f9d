package lintel

import (
	"fmt"
	"sort"
)

// Error is one problem reported by a review.
type Error struct {
	// Rule names the review that reported the error.
	Rule    string   `json:"rule"`
	Path    string   `json:"path"`
	Range   Range    `json:"range"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Fixes   []Fix    `json:"fixes,omitempty"`
}

// Fixable reports whether the error carries an automated fix.
func (e Error) Fixable() bool {
	return len(e.Fixes) > 0
}

func (e Error) String() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)", e.Path, e.Range.Start.Row, e.Range.Start.Column, e.Message, e.Rule)
}

// Result is the outcome of one run: the errors to display, grouped by the
// path of the file they point at. Each group is sorted by range.
type Result struct {
	ErrorsByPath map[string][]Error
}

// Paths returns the paths that have errors, sorted.
func (r Result) Paths() []string {
	return sortedKeys(r.ErrorsByPath)
}

// Errors returns every error, ordered by path and then by range.
func (r Result) Errors() []Error {
	var out []Error
	for _, p := range r.Paths() {
		out = append(out, r.ErrorsByPath[p]...)
	}
	return out
}

// Count returns the total number of errors.
func (r Result) Count() int {
	n := 0
	for _, errs := range r.ErrorsByPath {
		n += len(errs)
	}
	return n
}

// groupErrors buckets errs by path and sorts each bucket by range. The sort
// is stable so errors with equal ranges keep the report's order.
func groupErrors(errs []Error) map[string][]Error {
	byPath := make(map[string][]Error)
	for _, e := range errs {
		byPath[e.Path] = append(byPath[e.Path], e)
	}
	for _, group := range byPath {
		sortByRange(group)
	}
	return byPath
}

func sortByRange(errs []Error) {
	sort.SliceStable(errs, func(i, j int) bool {
		return CompareRanges(errs[i].Range, errs[j].Range) < 0
	})
}

// filterIgnored drops the groups whose path the review ignores.
func filterIgnored(byPath map[string][]Error, ignores func(string) bool) map[string][]Error {
	for p := range byPath {
		if ignores(p) {
			delete(byPath, p)
		}
	}
	return byPath
}

// buildResult turns a review's raw report into a Result.
// The report's slice may alias knowledge held in the cache, so it is copied.
func buildResult[K any](review Review[K], errs []Error) Result {
	owned := make([]Error, len(errs))
	copy(owned, errs)
	for i := range owned {
		if owned[i].Rule == "" {
			owned[i].Rule = review.name
		}
	}
	byPath := filterIgnored(groupErrors(owned), review.ignores)
	return Result{ErrorsByPath: byPath}
}

// mergeResults combines results of several reviews, keeping each path's
// errors sorted by range.
func mergeResults(results ...Result) Result {
	byPath := make(map[string][]Error)
	for _, r := range results {
		for p, errs := range r.ErrorsByPath {
			byPath[p] = append(byPath[p], errs...)
		}
	}
	for _, group := range byPath {
		sortByRange(group)
	}
	return Result{ErrorsByPath: byPath}
}
