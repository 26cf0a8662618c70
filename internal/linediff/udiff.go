package linediff

import (
	"fmt"
	"strings"

	"staged/internal/diff"

	"github.com/aymanbagabas/go-udiff"
)

// Udiff diffs with go-udiff (the gopls diff algorithm) and converts its
// unified hunks.
type Udiff struct{}

func (Udiff) Hunks(before, after string) ([]diff.Hunk, error) {
	edits := udiff.Strings(before, after)
	if len(edits) == 0 {
		return nil, nil
	}

	unified, err := udiff.ToUnifiedDiff("a", "b", before, edits, 0)
	if err != nil {
		return nil, fmt.Errorf("building unified diff: %w", err)
	}

	hunks := make([]diff.Hunk, 0, len(unified.Hunks))
	for _, h := range unified.Hunks {
		hb := newHunkBuilder(h.FromLine-1, h.ToLine-1)
		for _, l := range h.Lines {
			content := trimEOL(l.Content)
			switch l.Kind {
			case udiff.Delete:
				hb.removed(content)
			case udiff.Insert:
				hb.added(content)
			default:
				hb.context(content)
			}
		}
		hunks = append(hunks, hb.done())
	}
	return hunks, nil
}

func trimEOL(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}
