package diff

// panes accumulates the two row sequences of a side-by-side view.
type panes struct {
	old []DiffRow
	new []DiffRow
}

func (p *panes) context(oldNum int, oldContent string, newNum int, newContent string) {
	p.old = append(p.old, LineRow(oldNum, oldContent, Context))
	p.new = append(p.new, LineRow(newNum, newContent, Context))
}

// lockstep emits unchanged lines to both panes until either cursor reaches
// its stop. Lines left over on one side (only possible with inconsistent
// input) are emitted to that pane alone so no line is dropped.
func (p *panes) lockstep(oldLines, newLines []string, oldIdx, newIdx *int, oldStop, newStop int) {
	oldStop = min(oldStop, len(oldLines))
	newStop = min(newStop, len(newLines))
	for *oldIdx < oldStop && *newIdx < newStop {
		p.context(*oldIdx+1, oldLines[*oldIdx], *newIdx+1, newLines[*newIdx])
		*oldIdx++
		*newIdx++
	}
	for ; *oldIdx < oldStop; *oldIdx++ {
		p.old = append(p.old, LineRow(*oldIdx+1, oldLines[*oldIdx], Context))
	}
	for ; *newIdx < newStop; *newIdx++ {
		p.new = append(p.new, LineRow(*newIdx+1, newLines[*newIdx], Context))
	}
}

// pending buffers a run of removed and added lines inside one hunk until a
// flush turns it into rows.
type pending struct {
	removed []HunkLine
	added   []HunkLine
}

func (b *pending) empty() bool { return len(b.removed) == 0 && len(b.added) == 0 }

// flush appends the removed run to the old pane and the added run to the new
// pane. Each run gets a collapse indicator in the opposite pane: the
// removed-collapse sits in the new pane just before the added rows, the
// added-collapse sits in the old pane just after the removed rows.
func (b *pending) flush(p *panes) {
	if b.empty() {
		return
	}

	oldAt, newAt := len(p.old), len(p.new)

	for _, l := range b.removed {
		p.old = append(p.old, LineRow(*l.OldNumber, l.Content, Removed))
	}
	if len(b.removed) > 0 {
		p.new = append(p.new, CollapseRow(len(b.removed), *b.removed[0].OldNumber, oldAt))
	}

	for _, l := range b.added {
		p.new = append(p.new, LineRow(*l.NewNumber, l.Content, Added))
	}
	if len(b.added) > 0 {
		firstAdded := newAt
		if len(b.removed) > 0 {
			firstAdded++
		}
		p.old = append(p.old, CollapseRow(len(b.added), *b.added[0].NewNumber, firstAdded))
	}

	b.removed = b.removed[:0]
	b.added = b.added[:0]
}

// BuildRows turns hunks plus the full line arrays of both versions into two
// pane row sequences. Unchanged regions are emitted to both panes in
// lockstep; inside hunks consecutive removed and added lines are coalesced
// and cross-referenced by collapse indicators.
//
// The Line rows of the old pane reproduce oldLines in order, and likewise for
// the new pane, provided the hunks agree with the content.
func BuildRows(oldLines, newLines []string, hunks []Hunk) (oldRows, newRows []DiffRow) {
	var p panes
	oldIdx, newIdx := 0, 0

	for _, h := range hunks {
		p.lockstep(oldLines, newLines, &oldIdx, &newIdx, h.OldStart, h.NewStart)

		var buf pending
		for _, l := range hunkLines(h, oldLines, newLines) {
			switch l.Kind {
			case Context:
				buf.flush(&p)
				p.context(*l.OldNumber, l.Content, *l.NewNumber, l.Content)
				oldIdx, newIdx = *l.OldNumber, *l.NewNumber
			case Removed:
				if len(buf.added) > 0 {
					buf.flush(&p)
				}
				buf.removed = append(buf.removed, l)
				oldIdx = *l.OldNumber
			case Added:
				buf.added = append(buf.added, l)
				newIdx = *l.NewNumber
			}
		}
		buf.flush(&p)
	}

	p.lockstep(oldLines, newLines, &oldIdx, &newIdx, len(oldLines), len(newLines))
	return p.old, p.new
}

// BuildRowsFromRanges is the line-oriented variant of BuildRows: each
// changed range is one removed run followed by one added run.
func BuildRowsFromRanges(oldLines, newLines []string, ranges []AlignmentRange) (oldRows, newRows []DiffRow) {
	var p panes
	oldIdx, newIdx := 0, 0

	for _, r := range ranges {
		if !r.Changed {
			p.lockstep(oldLines, newLines, &oldIdx, &newIdx, r.Old.End, r.New.End)
			continue
		}
		p.lockstep(oldLines, newLines, &oldIdx, &newIdx, r.Old.Start, r.New.Start)
		buf := pending{
			removed: removedRun(oldLines, r.Old.Start, r.Old.End),
			added:   addedRun(newLines, r.New.Start, r.New.End),
		}
		buf.flush(&p)
		oldIdx = max(oldIdx, min(r.Old.End, len(oldLines)))
		newIdx = max(newIdx, min(r.New.End, len(newLines)))
	}

	p.lockstep(oldLines, newLines, &oldIdx, &newIdx, len(oldLines), len(newLines))
	return p.old, p.new
}

// hunkLines returns the hunk's line records, deriving them from the file
// content when the hunk only carries coordinates.
func hunkLines(h Hunk, oldLines, newLines []string) []HunkLine {
	if len(h.Lines) > 0 || (h.OldLines == 0 && h.NewLines == 0) {
		return h.Lines
	}
	lines := removedRun(oldLines, h.OldStart, h.OldEnd())
	return append(lines, addedRun(newLines, h.NewStart, h.NewEnd())...)
}

func removedRun(lines []string, start, end int) []HunkLine {
	end = min(end, len(lines))
	if start >= end {
		return nil
	}
	run := make([]HunkLine, 0, end-start)
	for i := start; i < end; i++ {
		run = append(run, RemovedLine(i+1, lines[i]))
	}
	return run
}

func addedRun(lines []string, start, end int) []HunkLine {
	end = min(end, len(lines))
	if start >= end {
		return nil
	}
	run := make([]HunkLine, 0, end-start)
	for i := start; i < end; i++ {
		run = append(run, AddedLine(i+1, lines[i]))
	}
	return run
}
