// internal/diff/types.go
package diff

import (
	"encoding/json"
	"fmt"
)

// LineKind indicates whether a hunk line was added, removed, or is context
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

func (k LineKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "context"
	}
}

func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *LineKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "context":
		*k = Context
	case "added":
		*k = Added
	case "removed":
		*k = Removed
	default:
		return fmt.Errorf("unknown line kind %q", text)
	}
	return nil
}

// Line is one line of a file version. Number is 1-indexed.
type Line struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// HunkLine is one line inside a hunk body.
//
// Added lines never carry an old number, Removed lines never carry a new
// number, Context lines carry both.
type HunkLine struct {
	Kind      LineKind `json:"kind"`
	OldNumber *int     `json:"old_number,omitempty"`
	NewNumber *int     `json:"new_number,omitempty"`
	Content   string   `json:"content"`
}

// ContextLine, AddedLine and RemovedLine build hunk lines with the number
// fields their kind requires.
func ContextLine(oldNum, newNum int, content string) HunkLine {
	return HunkLine{Kind: Context, OldNumber: &oldNum, NewNumber: &newNum, Content: content}
}

func AddedLine(newNum int, content string) HunkLine {
	return HunkLine{Kind: Added, NewNumber: &newNum, Content: content}
}

func RemovedLine(oldNum int, content string) HunkLine {
	return HunkLine{Kind: Removed, OldNumber: &oldNum, Content: content}
}

// Hunk is a changed region.
//
// OldStart and NewStart are 0-indexed line offsets; the hunk covers
// [OldStart, OldStart+OldLines) of the old file and [NewStart,
// NewStart+NewLines) of the new file. Hunks handed to this package must be
// ordered by OldStart and must not overlap on either side.
type Hunk struct {
	OldStart int        `json:"old_start"`
	OldLines int        `json:"old_lines"`
	NewStart int        `json:"new_start"`
	NewLines int        `json:"new_lines"`
	Header   string     `json:"header"`
	Lines    []HunkLine `json:"lines"`
}

// OldEnd returns the exclusive end offset of the hunk in the old file.
func (h Hunk) OldEnd() int { return h.OldStart + h.OldLines }

// NewEnd returns the exclusive end offset of the hunk in the new file.
func (h Hunk) NewEnd() int { return h.NewStart + h.NewLines }

// UnifiedHeader renders the hunk header the way git prints it, with
// 1-indexed starts and a 0 start for an empty side.
func (h Hunk) UnifiedHeader() string {
	return fmt.Sprintf("@@ -%s +%s @@", headerRange(h.OldStart, h.OldLines), headerRange(h.NewStart, h.NewLines))
}

func headerRange(start, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", start)
	}
	if count == 1 {
		return fmt.Sprintf("%d", start+1)
	}
	return fmt.Sprintf("%d,%d", start+1, count)
}

// Span is a half-open interval [Start, End) of line indices.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) Len() int { return s.End - s.Start }

// SourceLines holds the 1-indexed inclusive line numbers of a changed
// region. A side is nil when the region has no lines there.
type SourceLines struct {
	OldStart *int `json:"old_start,omitempty"`
	OldEnd   *int `json:"old_end,omitempty"`
	NewStart *int `json:"new_start,omitempty"`
	NewEnd   *int `json:"new_end,omitempty"`
}

// AlignmentRange pairs a span of the old file with a span of the new file.
// Unchanged ranges always have spans of equal length.
type AlignmentRange struct {
	Old     Span         `json:"before"`
	New     Span         `json:"after"`
	Changed bool         `json:"changed"`
	Source  *SourceLines `json:"source_lines,omitempty"`
}

// RowType tags a DiffRow.
type RowType int

const (
	RowLine RowType = iota
	RowCollapse
)

// DiffRow is one row of pane output: either a content line or a collapse
// indicator standing in for lines that only exist in the other pane.
type DiffRow struct {
	Type RowType

	// Set when Type == RowLine.
	Line Line
	Kind LineKind

	// Set when Type == RowCollapse. OtherPaneIndex points at the row in the
	// other pane where the collapsed run starts.
	Count          int
	StartLine      int
	OtherPaneIndex int
}

// LineRow returns a content row.
func LineRow(number int, content string, kind LineKind) DiffRow {
	return DiffRow{Type: RowLine, Line: Line{Number: number, Content: content}, Kind: kind}
}

// CollapseRow returns a collapse indicator row.
func CollapseRow(count, startLine, otherPaneIndex int) DiffRow {
	return DiffRow{Type: RowCollapse, Count: count, StartLine: startLine, OtherPaneIndex: otherPaneIndex}
}

func (r DiffRow) IsCollapse() bool { return r.Type == RowCollapse }

type lineRowJSON struct {
	Type     string   `json:"type"`
	LineType LineKind `json:"line_type"`
	Lineno   int      `json:"lineno"`
	Content  string   `json:"content"`
}

type collapseRowJSON struct {
	Type           string `json:"type"`
	Count          int    `json:"count"`
	StartLine      int    `json:"start_line"`
	OtherPaneIndex int    `json:"other_pane_index"`
}

func (r DiffRow) MarshalJSON() ([]byte, error) {
	if r.Type == RowCollapse {
		return json.Marshal(collapseRowJSON{
			Type:           "collapse",
			Count:          r.Count,
			StartLine:      r.StartLine,
			OtherPaneIndex: r.OtherPaneIndex,
		})
	}
	return json.Marshal(lineRowJSON{
		Type:     "line",
		LineType: r.Kind,
		Lineno:   r.Line.Number,
		Content:  r.Line.Content,
	})
}

func (r *DiffRow) UnmarshalJSON(data []byte) error {
	var tagged struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	switch tagged.Type {
	case "collapse":
		var c collapseRowJSON
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*r = CollapseRow(c.Count, c.StartLine, c.OtherPaneIndex)
	case "line":
		var l lineRowJSON
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		*r = LineRow(l.Lineno, l.Content, l.LineType)
	default:
		return fmt.Errorf("unknown row type %q", tagged.Type)
	}
	return nil
}
