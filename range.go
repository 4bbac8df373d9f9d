package lintel

import "fmt"

// Position is a 1-indexed (row, column) location in a source file.
// Columns count bytes.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Range is a half-open span [Start, End) between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// ComparePositions returns -1, 0 or 1 when a sorts before, equal to or after b.
func ComparePositions(a, b Position) int {
	switch {
	case a.Row < b.Row:
		return -1
	case a.Row > b.Row:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	default:
		return 0
	}
}

// CompareRanges orders ranges by start row, start column, end row, then end column.
func CompareRanges(a, b Range) int {
	if c := ComparePositions(a.Start, b.Start); c != 0 {
		return c
	}
	return ComparePositions(a.End, b.End)
}

// Overlaps reports whether two ranges share a non-empty region.
// Touching ranges (a.End == b.Start) do not overlap.
func (r Range) Overlaps(other Range) bool {
	return ComparePositions(r.End, other.Start) > 0 && ComparePositions(other.End, r.Start) > 0
}

// Empty reports whether the range covers no characters.
func (r Range) Empty() bool {
	return ComparePositions(r.Start, r.End) == 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
