package diff

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contents(rows []DiffRow) []string {
	var out []string
	for _, r := range rows {
		if !r.IsCollapse() {
			out = append(out, r.Line.Content)
		}
	}
	return out
}

func collapses(rows []DiffRow) []DiffRow {
	var out []DiffRow
	for _, r := range rows {
		if r.IsCollapse() {
			out = append(out, r)
		}
	}
	return out
}

func TestBuildRows_Replace(t *testing.T) {
	oldLines := []string{"a", "b", "c"}
	newLines := []string{"a", "X", "c"}
	hunks := []Hunk{{
		OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1,
		Lines: []HunkLine{RemovedLine(2, "b"), AddedLine(2, "X")},
	}}

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)

	assert.Equal(t, []DiffRow{
		LineRow(1, "a", Context),
		LineRow(2, "b", Removed),
		CollapseRow(1, 2, 2),
		LineRow(3, "c", Context),
	}, oldRows)
	assert.Equal(t, []DiffRow{
		LineRow(1, "a", Context),
		CollapseRow(1, 2, 1),
		LineRow(2, "X", Added),
		LineRow(3, "c", Context),
	}, newRows)
}

func TestBuildRows_PureAddition(t *testing.T) {
	after := "a\nb\n"
	hunks, err := Synthesize(nil, &after)
	require.NoError(t, err)

	oldRows, newRows := BuildRows(nil, SplitLines(after), hunks)

	assert.Equal(t, []DiffRow{CollapseRow(2, 1, 0)}, oldRows)
	assert.Equal(t, []DiffRow{LineRow(1, "a", Added), LineRow(2, "b", Added)}, newRows)
}

func TestBuildRows_PureDeletion(t *testing.T) {
	before := "x\ny\nz"
	hunks, err := Synthesize(&before, nil)
	require.NoError(t, err)

	oldRows, newRows := BuildRows(SplitLines(before), nil, hunks)

	assert.Equal(t, []string{"x", "y", "z"}, contents(oldRows))
	assert.Empty(t, collapses(oldRows))
	assert.Equal(t, []DiffRow{CollapseRow(3, 1, 0)}, newRows)
}

func TestBuildRows_IdenticalFiles(t *testing.T) {
	lines := []string{"one", "two", "three"}

	oldRows, newRows := BuildRows(lines, lines, nil)

	assert.Equal(t, lines, contents(oldRows))
	assert.Equal(t, lines, contents(newRows))
	assert.Empty(t, collapses(oldRows))
	assert.Empty(t, collapses(newRows))
	for i := range oldRows {
		assert.Equal(t, Context, oldRows[i].Kind)
		assert.Equal(t, i+1, newRows[i].Line.Number)
	}
}

func TestBuildRows_Interleaved(t *testing.T) {
	oldLines := []string{"a", "b", "c", "d"}
	newLines := []string{"a", "B", "C", "d"}
	hunks := []Hunk{{
		OldStart: 1, OldLines: 2, NewStart: 1, NewLines: 2,
		Lines: []HunkLine{
			RemovedLine(2, "b"), AddedLine(2, "B"),
			RemovedLine(3, "c"), AddedLine(3, "C"),
		},
	}}

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)

	assert.Equal(t, []DiffRow{
		LineRow(1, "a", Context),
		LineRow(2, "b", Removed),
		CollapseRow(1, 2, 2),
		LineRow(3, "c", Removed),
		CollapseRow(1, 3, 4),
		LineRow(4, "d", Context),
	}, oldRows)
	assert.Equal(t, []DiffRow{
		LineRow(1, "a", Context),
		CollapseRow(1, 2, 1),
		LineRow(2, "B", Added),
		CollapseRow(1, 3, 3),
		LineRow(3, "C", Added),
		LineRow(4, "d", Context),
	}, newRows)
}

func TestBuildRows_RemovedRunThenAddedRun(t *testing.T) {
	oldLines := []string{"keep", "r1", "r2", "tail"}
	newLines := []string{"keep", "a1", "a2", "a3", "tail"}
	hunks := []Hunk{{
		OldStart: 1, OldLines: 2, NewStart: 1, NewLines: 3,
		Lines: []HunkLine{
			RemovedLine(2, "r1"), RemovedLine(3, "r2"),
			AddedLine(2, "a1"), AddedLine(3, "a2"), AddedLine(4, "a3"),
		},
	}}

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)

	assert.Equal(t, []DiffRow{
		LineRow(1, "keep", Context),
		LineRow(2, "r1", Removed),
		LineRow(3, "r2", Removed),
		CollapseRow(3, 2, 2),
		LineRow(4, "tail", Context),
	}, oldRows)
	assert.Equal(t, []DiffRow{
		LineRow(1, "keep", Context),
		CollapseRow(2, 2, 1),
		LineRow(2, "a1", Added),
		LineRow(3, "a2", Added),
		LineRow(4, "a3", Added),
		LineRow(5, "tail", Context),
	}, newRows)
}

func TestBuildRows_AddedBeforeRemoved(t *testing.T) {
	oldLines := []string{"a", "old"}
	newLines := []string{"a", "new"}
	hunks := []Hunk{{
		OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1,
		Lines: []HunkLine{AddedLine(2, "new"), RemovedLine(2, "old")},
	}}

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)

	// The removed line after an addition forces the added run out first.
	assert.Equal(t, []DiffRow{
		LineRow(1, "a", Context),
		CollapseRow(1, 2, 1),
		LineRow(2, "old", Removed),
	}, oldRows)
	assert.Equal(t, []DiffRow{
		LineRow(1, "a", Context),
		LineRow(2, "new", Added),
		CollapseRow(1, 2, 2),
	}, newRows)
}

func TestBuildRows_HunkWithContextLines(t *testing.T) {
	oldLines := []string{"1", "2", "3", "4", "5"}
	newLines := []string{"1", "2", "three", "4", "5"}
	hunks := []Hunk{{
		OldStart: 1, OldLines: 3, NewStart: 1, NewLines: 3,
		Lines: []HunkLine{
			ContextLine(2, 2, "2"),
			RemovedLine(3, "3"),
			AddedLine(3, "three"),
			ContextLine(4, 4, "4"),
		},
	}}

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)

	assert.Equal(t, oldLines, contents(oldRows))
	assert.Equal(t, newLines, contents(newRows))
	assert.Len(t, oldRows, 6)
	assert.Len(t, newRows, 6)
	assert.Equal(t, CollapseRow(1, 3, 3), oldRows[3])
	assert.Equal(t, CollapseRow(1, 3, 2), newRows[2])
}

func TestBuildRows_MultipleHunks(t *testing.T) {
	oldLines := []string{"a", "b", "c", "d", "e"}
	newLines := []string{"a", "c", "d", "d2", "e"}
	hunks := []Hunk{
		{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 0, Lines: []HunkLine{RemovedLine(2, "b")}},
		{OldStart: 4, OldLines: 0, NewStart: 3, NewLines: 1, Lines: []HunkLine{AddedLine(4, "d2")}},
	}

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)

	assert.Equal(t, oldLines, contents(oldRows))
	assert.Equal(t, newLines, contents(newRows))
	assert.Equal(t, []DiffRow{CollapseRow(1, 2, 1)}, collapses(newRows))
	assert.Equal(t, []DiffRow{CollapseRow(1, 4, 4)}, collapses(oldRows))
	// Unchanged rows stay paired at equal positions.
	assert.Len(t, oldRows, len(newRows))
}

func TestBuildRows_HunkWithoutLineRecords(t *testing.T) {
	oldLines := []string{"a", "b", "c"}
	newLines := []string{"a", "X", "Y", "c"}
	hunks := []Hunk{{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 2}}

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)

	assert.Equal(t, oldLines, contents(oldRows))
	assert.Equal(t, newLines, contents(newRows))
	assert.Equal(t, []DiffRow{CollapseRow(2, 2, 2)}, collapses(oldRows))
	assert.Equal(t, []DiffRow{CollapseRow(1, 2, 1)}, collapses(newRows))
}

func TestBuildRows_InconsistentLengthsKeepEveryLine(t *testing.T) {
	oldLines := []string{"a", "b"}
	newLines := []string{"a", "b", "c", "d"}

	oldRows, newRows := BuildRows(oldLines, newLines, nil)

	assert.Equal(t, oldLines, contents(oldRows))
	assert.Equal(t, newLines, contents(newRows))
}

func TestBuildRowsFromRanges(t *testing.T) {
	oldLines := []string{"a", "b", "c"}
	newLines := []string{"a", "X", "c"}
	ranges := Align(3, 3, []Hunk{{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1}})

	oldRows, newRows := BuildRowsFromRanges(oldLines, newLines, ranges)
	wantOld, wantNew := BuildRows(oldLines, newLines, []Hunk{{
		OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1,
		Lines: []HunkLine{RemovedLine(2, "b"), AddedLine(2, "X")},
	}})

	assert.Equal(t, wantOld, oldRows)
	assert.Equal(t, wantNew, newRows)
}

func TestDiffRow_JSON(t *testing.T) {
	rows := []DiffRow{LineRow(3, "x := 1", Added), CollapseRow(2, 7, 4)}

	data, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"line","line_type":"added","lineno":3,"content":"x := 1"},
		{"type":"collapse","count":2,"start_line":7,"other_pane_index":4}
	]`, string(data))

	var decoded []DiffRow
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rows, decoded)
}
