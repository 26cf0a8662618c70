package diff

import (
	"errors"
	"fmt"
)

var ErrInvalidHunks = errors.New("diff: invalid hunks")

// ValidateHunks checks the preconditions the engine relies on: hunks are
// ordered, do not overlap, stay inside both files, and their line records
// agree with their declared counts and numbering.
func ValidateHunks(hunks []Hunk, oldLen, newLen int) error {
	oldPos, newPos := 0, 0
	for i, h := range hunks {
		if h.OldStart < 0 || h.NewStart < 0 || h.OldLines < 0 || h.NewLines < 0 {
			return fmt.Errorf("%w: hunk %d has negative coordinates", ErrInvalidHunks, i)
		}
		if h.OldStart < oldPos || h.NewStart < newPos {
			return fmt.Errorf("%w: hunk %d overlaps or is out of order", ErrInvalidHunks, i)
		}
		if h.OldEnd() > oldLen || h.NewEnd() > newLen {
			return fmt.Errorf("%w: hunk %d extends past end of file", ErrInvalidHunks, i)
		}
		if err := validateHunkLines(h); err != nil {
			return fmt.Errorf("%w: hunk %d: %v", ErrInvalidHunks, i, err)
		}
		oldPos, newPos = h.OldEnd(), h.NewEnd()
	}
	return nil
}

func validateHunkLines(h Hunk) error {
	if len(h.Lines) == 0 {
		return nil
	}
	oldNext, newNext := h.OldStart+1, h.NewStart+1
	var olds, news int
	for j, l := range h.Lines {
		switch l.Kind {
		case Context:
			if l.OldNumber == nil || l.NewNumber == nil {
				return fmt.Errorf("context line %d is missing a line number", j)
			}
		case Added:
			if l.OldNumber != nil || l.NewNumber == nil {
				return fmt.Errorf("added line %d has wrong line numbers", j)
			}
		case Removed:
			if l.NewNumber != nil || l.OldNumber == nil {
				return fmt.Errorf("removed line %d has wrong line numbers", j)
			}
		}
		if l.OldNumber != nil {
			if *l.OldNumber != oldNext {
				return fmt.Errorf("line %d: old number %d, want %d", j, *l.OldNumber, oldNext)
			}
			oldNext++
			olds++
		}
		if l.NewNumber != nil {
			if *l.NewNumber != newNext {
				return fmt.Errorf("line %d: new number %d, want %d", j, *l.NewNumber, newNext)
			}
			newNext++
			news++
		}
	}
	if olds != h.OldLines || news != h.NewLines {
		return fmt.Errorf("line records cover %d old/%d new lines, header says %d/%d", olds, news, h.OldLines, h.NewLines)
	}
	return nil
}
