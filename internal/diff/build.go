// internal/diff/build.go
package diff

import (
	"bytes"
)

// Input is everything the engine needs for one file. A nil side means the
// file does not exist in that version.
type Input struct {
	Before *string
	After  *string
	Hunks  []Hunk
	Binary bool
}

// Stats counts changed lines.
type Stats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Changes   int `json:"changes"`
}

// Result is the side-by-side representation of one file.
type Result struct {
	Binary  bool             `json:"is_binary"`
	Hunks   []Hunk           `json:"hunks"`
	OldRows []DiffRow        `json:"old_rows"`
	NewRows []DiffRow        `json:"new_rows"`
	Ranges  []AlignmentRange `json:"ranges"`
	Stats   Stats            `json:"stats"`
}

// Build runs the whole engine for one file: hunk synthesis for files that
// exist on one side only, alignment, and row building. It performs no I/O
// and keeps no state, so distinct inputs may be built concurrently.
//
// Binary input short-circuits to an empty result with Binary set; callers
// must check it before rendering rows.
func Build(in Input) *Result {
	if in.Binary {
		return &Result{Binary: true}
	}

	oldLines := splitSide(in.Before)
	newLines := splitSide(in.After)

	hunks := in.Hunks
	if len(hunks) == 0 {
		// A side with no lines, absent or empty, turns the other side into a
		// single added or removed run. Synthesize cannot fail here since
		// exactly one side is passed.
		switch {
		case len(oldLines) == 0 && len(newLines) > 0:
			hunks, _ = Synthesize(nil, in.After)
		case len(newLines) == 0 && len(oldLines) > 0:
			hunks, _ = Synthesize(in.Before, nil)
		}
	}
	hunks = materialize(hunks, oldLines, newLines)

	oldRows, newRows := BuildRows(oldLines, newLines, hunks)
	return &Result{
		Hunks:   hunks,
		OldRows: oldRows,
		NewRows: newRows,
		Ranges:  Align(len(oldLines), len(newLines), hunks),
		Stats:   CountStats(hunks),
	}
}

// materialize fills in the line records of hunks that only carry
// coordinates. The input slice is not modified.
func materialize(hunks []Hunk, oldLines, newLines []string) []Hunk {
	var out []Hunk
	for i, h := range hunks {
		if len(h.Lines) > 0 || (h.OldLines == 0 && h.NewLines == 0) {
			continue
		}
		if out == nil {
			out = append([]Hunk(nil), hunks...)
		}
		out[i].Lines = hunkLines(h, oldLines, newLines)
	}
	if out == nil {
		return hunks
	}
	return out
}

func splitSide(content *string) []string {
	if content == nil {
		return nil
	}
	return SplitLines(*content)
}

// CountStats tallies added and removed hunk lines.
func CountStats(hunks []Hunk) Stats {
	var s Stats
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case Added:
				s.Additions++
			case Removed:
				s.Deletions++
			}
		}
	}
	s.Changes = s.Additions + s.Deletions
	return s
}

// Format returns the result's hunks as unified diff text.
func (r *Result) Format() string {
	return FormatHunks(r.Hunks)
}

// FormatHunks renders hunks as unified diff text without file headers.
func FormatHunks(hunks []Hunk) string {
	var buf bytes.Buffer

	for _, hunk := range hunks {
		buf.WriteString(hunk.UnifiedHeader())
		buf.WriteString("\n")

		for _, line := range hunk.Lines {
			switch line.Kind {
			case Added:
				buf.WriteString("+")
			case Removed:
				buf.WriteString("-")
			case Context:
				buf.WriteString(" ")
			}
			buf.WriteString(line.Content)
			buf.WriteString("\n")
		}
	}

	return buf.String()
}
