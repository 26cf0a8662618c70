package linediff

import (
	"errors"

	"staged/internal/diff"
)

// DefaultLCSCells bounds the size of the LCS matrix (old lines x new lines).
const DefaultLCSCells = 4 << 20

var ErrTooLarge = errors.New("linediff: input too large for lcs")

// LCS diffs with a full longest-common-subsequence matrix. It is exact but
// quadratic, so inputs beyond maxCells matrix cells are rejected.
type LCS struct {
	maxCells int
}

func NewLCS(maxCells int) *LCS {
	return &LCS{maxCells: maxCells}
}

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

func (e *LCS) Hunks(before, after string) ([]diff.Hunk, error) {
	oldLines := diff.SplitLines(before)
	newLines := diff.SplitLines(after)
	if e.maxCells > 0 && (len(oldLines)+1)*(len(newLines)+1) > e.maxCells {
		return nil, ErrTooLarge
	}

	ops := e.script(oldLines, newLines, e.computeLCS(oldLines, newLines))

	var hunks []diff.Hunk
	var hb *hunkBuilder
	i, j := 0, 0
	for _, op := range ops {
		switch op {
		case opEqual:
			if hb != nil {
				hunks = append(hunks, hb.done())
				hb = nil
			}
			i++
			j++
		case opDelete:
			if hb == nil {
				hb = newHunkBuilder(i, j)
			}
			hb.removed(oldLines[i])
			i++
		case opInsert:
			if hb == nil {
				hb = newHunkBuilder(i, j)
			}
			hb.added(newLines[j])
			j++
		}
	}
	if hb != nil {
		hunks = append(hunks, hb.done())
	}
	return hunks, nil
}

// computeLCS creates a matrix for longest common subsequence
func (e *LCS) computeLCS(oldLines, newLines []string) [][]int {
	matrix := make([][]int, len(oldLines)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(newLines)+1)
	}

	for i := 1; i <= len(oldLines); i++ {
		for j := 1; j <= len(newLines); j++ {
			if oldLines[i-1] == newLines[j-1] {
				matrix[i][j] = matrix[i-1][j-1] + 1
			} else {
				matrix[i][j] = max(matrix[i-1][j], matrix[i][j-1])
			}
		}
	}

	return matrix
}

// script walks the matrix back from the end and returns the edit script in
// forward order. Within a changed run deletions come before insertions.
func (e *LCS) script(oldLines, newLines []string, lcs [][]int) []opKind {
	ops := make([]opKind, 0, len(oldLines)+len(newLines))

	i, j := len(oldLines), len(newLines)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && oldLines[i-1] == newLines[j-1]:
			ops = append(ops, opEqual)
			i--
			j--
		case j > 0 && (i == 0 || lcs[i][j-1] >= lcs[i-1][j]):
			ops = append(ops, opInsert)
			j--
		default:
			ops = append(ops, opDelete)
			i--
		}
	}

	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return ops
}
