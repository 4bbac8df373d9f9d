package lintel

import (
	"fmt"
	"sort"
	"strings"
)

// Fix is a single text edit attached to a reported error: the text inside
// Range is replaced by Replacement.
type Fix struct {
	Range       Range  `json:"range"`
	Replacement string `json:"replacement"`
}

// ReplaceRange builds a fix replacing the text inside r.
func ReplaceRange(r Range, replacement string) Fix {
	return Fix{Range: r, Replacement: replacement}
}

// Removal builds a fix deleting the text inside r.
func Removal(r Range) Fix {
	return Fix{Range: r}
}

// InsertAt builds a fix inserting text before the character at pos.
func InsertAt(pos Position, text string) Fix {
	return Fix{Range: Range{Start: pos, End: pos}, Replacement: text}
}

// FixErrorKind classifies why a batch of fixes could not be applied.
type FixErrorKind int

const (
	// CollisionDetected means two fixes in the batch edit overlapping ranges.
	CollisionDetected FixErrorKind = iota + 1
	// ResultUnchanged means applying the batch produced the original source.
	ResultUnchanged
)

func (k FixErrorKind) String() string {
	switch k {
	case CollisionDetected:
		return "collision detected"
	case ResultUnchanged:
		return "result unchanged"
	default:
		return "unknown"
	}
}

// FixError is returned by ApplyFixes. Use errors.Is with ErrCollisionDetected
// or ErrResultUnchanged to classify it.
type FixError struct {
	Kind FixErrorKind
	// Pair holds the two colliding fixes for CollisionDetected.
	Pair [2]Fix
}

func (e *FixError) Error() string {
	if e.Kind == CollisionDetected && e.Pair != ([2]Fix{}) {
		return fmt.Sprintf("lintel: fix %s collides with fix %s", e.Pair[0].Range, e.Pair[1].Range)
	}
	return "lintel: " + e.Kind.String()
}

// Is matches any *FixError of the same kind.
func (e *FixError) Is(target error) bool {
	t, ok := target.(*FixError)
	return ok && t.Kind == e.Kind
}

var (
	ErrCollisionDetected error = &FixError{Kind: CollisionDetected}
	ErrResultUnchanged   error = &FixError{Kind: ResultUnchanged}
)

// ApplyFixes applies a batch of non-overlapping fixes to source and returns
// the edited text. It fails with ErrCollisionDetected before touching the
// source when two fixes overlap, and with ErrResultUnchanged when the edited
// text equals the input.
func ApplyFixes(fixes []Fix, source string) (string, error) {
	if a, b, ok := findCollision(fixes); ok {
		return "", &FixError{Kind: CollisionDetected, Pair: [2]Fix{a, b}}
	}

	// Farthest edits first so earlier line indices stay valid. At a shared
	// start the wider range goes first, so an insertion there lands in
	// front of the replacement text. Exact ties keep the caller's order in
	// the output.
	order := make([]int, len(fixes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := fixes[order[i]].Range, fixes[order[j]].Range
		if c := ComparePositions(a.Start, b.Start); c != 0 {
			return c > 0
		}
		if c := ComparePositions(a.End, b.End); c != 0 {
			return c > 0
		}
		return order[i] > order[j]
	})

	lines := strings.Split(source, "\n")
	for _, idx := range order {
		lines = applyFix(lines, fixes[idx])
	}

	result := strings.Join(lines, "\n")
	if result == source {
		return "", &FixError{Kind: ResultUnchanged}
	}
	return result, nil
}

// ApplyFixesToErrors applies the fixes of every given error together. All
// errors are expected to target the same file.
func ApplyFixesToErrors(errs []Error, source string) (string, error) {
	var fixes []Fix
	for _, e := range errs {
		fixes = append(fixes, e.Fixes...)
	}
	return ApplyFixes(fixes, source)
}

// findCollision returns the first overlapping pair of fixes, if any.
func findCollision(fixes []Fix) (Fix, Fix, bool) {
	for i := 0; i < len(fixes); i++ {
		for j := i + 1; j < len(fixes); j++ {
			if fixes[i].Range.Overlaps(fixes[j].Range) {
				return fixes[i], fixes[j], true
			}
		}
	}
	return Fix{}, Fix{}, false
}

// applyFix splices one fix into lines. Rows and columns outside the text
// clamp to its bounds.
func applyFix(lines []string, f Fix) []string {
	startRow := clampRow(f.Range.Start.Row, len(lines))
	endRow := clampRow(f.Range.End.Row, len(lines))
	if endRow < startRow {
		endRow = startRow
	}

	startLine := lines[startRow-1]
	endLine := lines[endRow-1]
	startCol, endCol := f.Range.Start.Column, f.Range.End.Column
	if f.Range.Start.Row > len(lines) {
		startCol = len(startLine) + 1
	}
	if f.Range.End.Row > len(lines) {
		endCol = len(endLine) + 1
	}
	prefix := startLine[:clampColumn(startCol, len(startLine))]
	suffix := endLine[clampColumn(endCol, len(endLine)):]

	middle := strings.Split(f.Replacement, "\n")
	middle[0] = prefix + middle[0]
	middle[len(middle)-1] += suffix

	out := make([]string, 0, len(lines)-(endRow-startRow+1)+len(middle))
	out = append(out, lines[:startRow-1]...)
	out = append(out, middle...)
	out = append(out, lines[endRow:]...)
	return out
}

func clampRow(row, count int) int {
	if row < 1 {
		return 1
	}
	if row > count {
		return count
	}
	return row
}

// clampColumn converts a 1-indexed column to a byte offset within a line.
func clampColumn(col, length int) int {
	if col < 1 {
		return 0
	}
	if col-1 > length {
		return length
	}
	return col - 1
}
