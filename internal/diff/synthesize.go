package diff

import "errors"

var (
	// ErrNoContent is returned when neither side of a diff has content.
	ErrNoContent = errors.New("diff: both sides absent")
	// ErrBothPresent is returned by Synthesize when both sides exist; such
	// pairs need a line differ.
	ErrBothPresent = errors.New("diff: both sides present, cannot synthesize")
)

// Synthesize builds the hunk for a file that exists on one side only: a new
// file (before == nil) becomes a single all-Added hunk and a deleted file
// (after == nil) a single all-Removed hunk. Empty content yields no hunks.
func Synthesize(before, after *string) ([]Hunk, error) {
	switch {
	case before == nil && after == nil:
		return nil, ErrNoContent
	case before != nil && after != nil:
		return nil, ErrBothPresent
	case before == nil:
		lines := SplitLines(*after)
		if len(lines) == 0 {
			return nil, nil
		}
		h := Hunk{NewLines: len(lines), Lines: make([]HunkLine, len(lines))}
		for i, l := range lines {
			h.Lines[i] = AddedLine(i+1, l)
		}
		h.Header = h.UnifiedHeader()
		return []Hunk{h}, nil
	default:
		lines := SplitLines(*before)
		if len(lines) == 0 {
			return nil, nil
		}
		h := Hunk{OldLines: len(lines), Lines: make([]HunkLine, len(lines))}
		for i, l := range lines {
			h.Lines[i] = RemovedLine(i+1, l)
		}
		h.Header = h.UnifiedHeader()
		return []Hunk{h}, nil
	}
}
