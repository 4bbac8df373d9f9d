package lintel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFixes_RemovesWholeLine(t *testing.T) {
	t.Parallel()

	got, err := ApplyFixes([]Fix{ReplaceRange(rng(1, 6, 2, 6), "")}, "a = 1\nb = 2\n")
	require.NoError(t, err)
	assert.Equal(t, "a = 1\n", got)
}

func TestApplyFixes_CollisionDetected(t *testing.T) {
	t.Parallel()

	a := ReplaceRange(rng(1, 1, 1, 5), "X")
	b := ReplaceRange(rng(1, 3, 1, 8), "Y")
	_, err := ApplyFixes([]Fix{a, b}, "0123456789")
	require.ErrorIs(t, err, ErrCollisionDetected)
	assert.NotErrorIs(t, err, ErrResultUnchanged)

	var fe *FixError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, [2]Fix{a, b}, fe.Pair)
	assert.Equal(t, "lintel: fix 1:1-1:5 collides with fix 1:3-1:8", err.Error())
}

func TestApplyFixes_TouchingFixesSucceed(t *testing.T) {
	t.Parallel()

	got, err := ApplyFixes([]Fix{
		ReplaceRange(rng(1, 1, 1, 5), "X"),
		ReplaceRange(rng(1, 5, 1, 8), "Y"),
	}, "0123456789")
	require.NoError(t, err)
	assert.Equal(t, "XY789", got)
}

func TestApplyFixes_ResultUnchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		fixes []Fix
	}{
		{"zero-width empty replacement", []Fix{ReplaceRange(rng(1, 1, 1, 1), "")}},
		{"same text", []Fix{ReplaceRange(rng(1, 1, 1, 4), "abc")}},
		{"no fixes", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ApplyFixes(tt.fixes, "abc\n")
			require.ErrorIs(t, err, ErrResultUnchanged)
			assert.Equal(t, "lintel: result unchanged", err.Error())
		})
	}
}

func TestApplyFixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		fixes  []Fix
		want   string
	}{
		{
			name:   "multi-line replacement",
			source: "one\ntwo\nthree",
			fixes:  []Fix{ReplaceRange(rng(2, 1, 2, 4), "2\n2b")},
			want:   "one\n2\n2b\nthree",
		},
		{
			name:   "replacement joining lines",
			source: "func f() {\n\treturn\n}",
			fixes:  []Fix{ReplaceRange(rng(1, 11, 3, 1), " return ")},
			want:   "func f() { return }",
		},
		{
			name:   "insert before first character",
			source: "x",
			fixes:  []Fix{InsertAt(Position{Row: 1, Column: 1}, "// hi\n")},
			want:   "// hi\nx",
		},
		{
			name:   "fixes on several lines",
			source: "a b c\nd e f",
			fixes: []Fix{
				ReplaceRange(rng(1, 3, 1, 4), "B"),
				ReplaceRange(rng(2, 5, 2, 6), "F"),
			},
			want: "a B c\nd e F",
		},
		{
			name:   "insertions at one point keep their order",
			source: "x",
			fixes: []Fix{
				InsertAt(Position{Row: 1, Column: 1}, "a"),
				InsertAt(Position{Row: 1, Column: 1}, "b"),
			},
			want: "abx",
		},
		{
			name:   "replacement then insertion at its start",
			source: "abcdef",
			fixes: []Fix{
				ReplaceRange(rng(1, 3, 1, 5), "X"),
				InsertAt(Position{Row: 1, Column: 3}, "Y"),
			},
			want: "abYXef",
		},
		{
			name:   "insertion then replacement at the same start",
			source: "abcdef",
			fixes: []Fix{
				InsertAt(Position{Row: 1, Column: 3}, "Y"),
				ReplaceRange(rng(1, 3, 1, 5), "X"),
			},
			want: "abYXef",
		},
		{
			name:   "multi-line removal sharing a start with an insertion",
			source: "one\ntwo\nthree",
			fixes: []Fix{
				Removal(rng(1, 4, 2, 4)),
				InsertAt(Position{Row: 1, Column: 4}, "!"),
			},
			want: "one!\nthree",
		},
		{
			name:   "end row past the last line",
			source: "abc\ndef",
			fixes:  []Fix{Removal(rng(2, 2, 9, 1))},
			want:   "abc\nd",
		},
		{
			name:   "columns past the end of the line",
			source: "abc",
			fixes:  []Fix{ReplaceRange(rng(1, 10, 1, 12), "!")},
			want:   "abc!",
		},
		{
			name:   "append after the last line",
			source: "abc\n",
			fixes:  []Fix{InsertAt(Position{Row: 3, Column: 1}, "def\n")},
			want:   "abc\ndef\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ApplyFixes(tt.fixes, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyFixesToErrors(t *testing.T) {
	t.Parallel()

	errs := []Error{
		{Path: "a.txt", Range: rng(1, 4, 1, 6), Fixes: []Fix{Removal(rng(1, 4, 1, 6))}},
		{Path: "a.txt", Range: rng(2, 1, 2, 1)},
		{Path: "a.txt", Range: rng(2, 4, 2, 5), Fixes: []Fix{ReplaceRange(rng(2, 4, 2, 5), "!")}},
	}
	got, err := ApplyFixesToErrors(errs, "abc  \ndef?\n")
	require.NoError(t, err)
	assert.Equal(t, "abc\ndef!\n", got)
}

func TestApplyFixesToErrors_CollisionAcrossErrors(t *testing.T) {
	t.Parallel()

	errs := []Error{
		{Fixes: []Fix{Removal(rng(1, 1, 2, 1))}},
		{Fixes: []Fix{Removal(rng(1, 4, 1, 6))}},
	}
	_, err := ApplyFixesToErrors(errs, "abc  \ndef\n")
	assert.ErrorIs(t, err, ErrCollisionDetected)
}

func TestFixErrorKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "collision detected", CollisionDetected.String())
	assert.Equal(t, "result unchanged", ResultUnchanged.String())
	assert.Equal(t, "unknown", FixErrorKind(0).String())
}
