package linediff

import (
	"staged/internal/diff"

	"github.com/pmezard/go-difflib/difflib"
)

// Difflib diffs with go-difflib's SequenceMatcher. Every non-equal opcode
// becomes one hunk.
type Difflib struct{}

func (Difflib) Hunks(before, after string) ([]diff.Hunk, error) {
	a := diff.SplitLines(before)
	b := diff.SplitLines(after)

	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var hunks []diff.Hunk
	for _, op := range m.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		hb := newHunkBuilder(op.I1, op.J1)
		for _, l := range a[op.I1:op.I2] {
			hb.removed(l)
		}
		for _, l := range b[op.J1:op.J2] {
			hb.added(l)
		}
		hunks = append(hunks, hb.done())
	}
	return hunks, nil
}
