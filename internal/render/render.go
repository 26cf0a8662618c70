// Package render prints file diffs to a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"staged/internal/diff"
	"staged/internal/filediff"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const (
	defaultWidth = 120
	minWidth     = 40
	separator    = " │ "
	tabWidth     = 4
)

type Options struct {
	// Width is the total output width in cells.
	Width int
	// NoIntraline disables character-level highlighting of changed pairs.
	NoIntraline bool
}

var (
	headerColor   = color.New(color.FgCyan, color.Bold)
	hunkColor     = color.New(color.FgCyan)
	addedColor    = color.New(color.FgGreen)
	removedColor  = color.New(color.FgRed)
	addedEmph     = color.New(color.FgBlack, color.BgGreen)
	removedEmph   = color.New(color.FgBlack, color.BgRed)
	collapseColor = color.New(color.FgHiBlack)
	gutterColor   = color.New(color.FgHiBlack)
)

// SideBySide prints the two panes of fd next to each other. Change blocks
// are padded so unchanged lines stay on the same output row.
func SideBySide(w io.Writer, fd *filediff.FileDiff, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	width = max(width, minWidth)

	if err := printHeader(w, fd); err != nil {
		return err
	}
	if fd.Binary {
		_, err := fmt.Fprintln(w, "Binary files differ")
		return err
	}

	l := newLayout(fd, width)
	for _, pair := range pairRows(fd.Before.Rows, fd.After.Rows) {
		left, right := l.cells(pair, !opts.NoIntraline)
		if _, err := fmt.Fprint(w, left, gutterColor.Sprint(separator), right, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func printHeader(w io.Writer, fd *filediff.FileDiff) error {
	_, err := fmt.Fprintf(w, "%s %s %s..%s %s %s\n",
		headerColor.Sprint(fd.Path),
		fd.Status,
		fd.Base, fd.Head,
		addedColor.Sprintf("+%d", fd.Stats.Additions),
		removedColor.Sprintf("-%d", fd.Stats.Deletions))
	return err
}

// rowPair is one output row; either side may be missing.
type rowPair struct {
	old, new *diff.DiffRow
	// partner rows for intraline highlighting
	oldPeer, newPeer *diff.DiffRow
}

func isContext(r diff.DiffRow) bool {
	return !r.IsCollapse() && r.Kind == diff.Context
}

// pairRows lines up the panes: context rows pair one to one, and each run
// of non-context rows is paired index by index with the opposite run.
func pairRows(oldRows, newRows []diff.DiffRow) []rowPair {
	var out []rowPair
	i, j := 0, 0
	for i < len(oldRows) || j < len(newRows) {
		if i < len(oldRows) && j < len(newRows) && isContext(oldRows[i]) && isContext(newRows[j]) {
			out = append(out, rowPair{old: &oldRows[i], new: &newRows[j]})
			i++
			j++
			continue
		}

		oi := i
		for i < len(oldRows) && !isContext(oldRows[i]) {
			i++
		}
		nj := j
		for j < len(newRows) && !isContext(newRows[j]) {
			j++
		}
		// One pane ran out or holds an unmatched context row.
		if oi == i && nj == j {
			if i < len(oldRows) {
				out = append(out, rowPair{old: &oldRows[i]})
				i++
			} else {
				out = append(out, rowPair{new: &newRows[j]})
				j++
			}
			continue
		}

		out = append(out, pairBlock(oldRows[oi:i], newRows[nj:j])...)
	}
	return out
}

func pairBlock(oldBlock, newBlock []diff.DiffRow) []rowPair {
	var removed, added []*diff.DiffRow
	for k := range oldBlock {
		if !oldBlock[k].IsCollapse() {
			removed = append(removed, &oldBlock[k])
		}
	}
	for k := range newBlock {
		if !newBlock[k].IsCollapse() {
			added = append(added, &newBlock[k])
		}
	}
	peer := func(rows []*diff.DiffRow, idx int) *diff.DiffRow {
		if idx < len(rows) {
			return rows[idx]
		}
		return nil
	}

	n := max(len(oldBlock), len(newBlock))
	out := make([]rowPair, n)
	ri, ai := 0, 0
	for k := 0; k < n; k++ {
		if k < len(oldBlock) {
			out[k].old = &oldBlock[k]
			if !oldBlock[k].IsCollapse() {
				out[k].oldPeer = peer(added, ri)
				ri++
			}
		}
		if k < len(newBlock) {
			out[k].new = &newBlock[k]
			if !newBlock[k].IsCollapse() {
				out[k].newPeer = peer(removed, ai)
				ai++
			}
		}
	}
	return out
}

type layout struct {
	gutter int
	column int
}

func newLayout(fd *filediff.FileDiff, width int) layout {
	maxLine := 1
	for _, rows := range [][]diff.DiffRow{fd.Before.Rows, fd.After.Rows} {
		for _, r := range rows {
			if !r.IsCollapse() && r.Line.Number > maxLine {
				maxLine = r.Line.Number
			}
		}
	}
	return layout{
		gutter: len(strconv.Itoa(maxLine)),
		column: (width - runewidth.StringWidth(separator)) / 2,
	}
}

func (l layout) cells(p rowPair, intraline bool) (string, string) {
	return l.cell(p.old, p.oldPeer, intraline), l.cell(p.new, p.newPeer, intraline)
}

// cell renders one pane cell padded to the column width.
func (l layout) cell(row, peer *diff.DiffRow, intraline bool) string {
	if row == nil {
		return strings.Repeat(" ", l.column)
	}
	if row.IsCollapse() {
		text := fmt.Sprintf("┈ %d %s ┈", row.Count, plural(row.Count, "line"))
		return collapseColor.Sprint(runewidth.FillRight(runewidth.Truncate(text, l.column, "…"), l.column))
	}

	sign, base, emph := " ", (*color.Color)(nil), (*color.Color)(nil)
	switch row.Kind {
	case diff.Added:
		sign, base, emph = "+", addedColor, addedEmph
	case diff.Removed:
		sign, base, emph = "-", removedColor, removedEmph
	}

	prefix := fmt.Sprintf("%*d %s ", l.gutter, row.Line.Number, sign)
	avail := l.column - runewidth.StringWidth(prefix)

	content := expandTabs(row.Line.Content)
	var segs []segment
	if intraline && peer != nil && base != nil {
		segs = highlight(content, expandTabs(peer.Line.Content), row.Kind == diff.Added)
	} else {
		segs = []segment{{text: content}}
	}
	segs, used := fit(segs, avail)

	var b strings.Builder
	b.WriteString(gutterColor.Sprint(prefix[:l.gutter]))
	b.WriteString(colorize(base, prefix[l.gutter:]))
	for _, s := range segs {
		if s.changed {
			b.WriteString(emph.Sprint(s.text))
		} else {
			b.WriteString(colorize(base, s.text))
		}
	}
	b.WriteString(strings.Repeat(" ", max(0, avail-used)))
	return b.String()
}

func colorize(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
