// Package linediff computes hunks between two file versions with
// zero context lines, in the coordinate system of staged/internal/diff.
package linediff

import (
	"fmt"

	"staged/internal/diff"
)

// Differ computes the changed regions between two texts.
type Differ interface {
	Hunks(before, after string) ([]diff.Hunk, error)
}

const (
	AlgorithmDifflib = "difflib"
	AlgorithmUdiff   = "udiff"
	AlgorithmLCS     = "lcs"
)

// Algorithms lists the names accepted by New.
var Algorithms = []string{AlgorithmDifflib, AlgorithmUdiff, AlgorithmLCS}

// New returns the differ registered under name. An empty name selects
// difflib.
func New(name string) (Differ, error) {
	switch name {
	case "", AlgorithmDifflib:
		return Difflib{}, nil
	case AlgorithmUdiff:
		return Udiff{}, nil
	case AlgorithmLCS:
		return NewLCS(DefaultLCSCells), nil
	default:
		return nil, fmt.Errorf("unknown diff algorithm %q", name)
	}
}

// hunkBuilder accumulates one hunk from a run of removed and added lines.
type hunkBuilder struct {
	hunk    diff.Hunk
	oldNext int
	newNext int
}

func newHunkBuilder(oldStart, newStart int) *hunkBuilder {
	return &hunkBuilder{
		hunk:    diff.Hunk{OldStart: oldStart, NewStart: newStart},
		oldNext: oldStart + 1,
		newNext: newStart + 1,
	}
}

func (b *hunkBuilder) removed(content string) {
	b.hunk.Lines = append(b.hunk.Lines, diff.RemovedLine(b.oldNext, content))
	b.hunk.OldLines++
	b.oldNext++
}

func (b *hunkBuilder) added(content string) {
	b.hunk.Lines = append(b.hunk.Lines, diff.AddedLine(b.newNext, content))
	b.hunk.NewLines++
	b.newNext++
}

func (b *hunkBuilder) context(content string) {
	b.hunk.Lines = append(b.hunk.Lines, diff.ContextLine(b.oldNext, b.newNext, content))
	b.hunk.OldLines++
	b.hunk.NewLines++
	b.oldNext++
	b.newNext++
}

func (b *hunkBuilder) done() diff.Hunk {
	b.hunk.Header = b.hunk.UnifiedHeader()
	return b.hunk
}
