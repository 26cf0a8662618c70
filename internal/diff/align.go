package diff

// Align partitions [0, oldLen) and [0, newLen) into alignment ranges using
// the hunks as the changed regions. Consecutive ranges are contiguous on both
// sides, the first starts at 0 and the last ends at the file length.
//
// Hunks are trusted: out-of-order or overlapping hunks produce undefined
// output. Build with -tags diffdebug to panic on them instead.
func Align(oldLen, newLen int, hunks []Hunk) []AlignmentRange {
	if oldLen == 0 && newLen == 0 {
		return nil
	}

	if len(hunks) == 0 {
		if oldLen == 0 || newLen == 0 {
			return []AlignmentRange{changedRange(0, oldLen, 0, newLen)}
		}
		return []AlignmentRange{{
			Old: Span{Start: 0, End: oldLen},
			New: Span{Start: 0, End: newLen},
		}}
	}

	assertHunks(hunks, oldLen, newLen)

	ranges := make([]AlignmentRange, 0, 2*len(hunks)+1)
	oldPos, newPos := 0, 0
	for _, h := range hunks {
		if oldPos < h.OldStart || newPos < h.NewStart {
			ranges = append(ranges, AlignmentRange{
				Old: Span{Start: oldPos, End: h.OldStart},
				New: Span{Start: newPos, End: h.NewStart},
			})
		}
		ranges = append(ranges, changedRange(h.OldStart, h.OldEnd(), h.NewStart, h.NewEnd()))
		oldPos, newPos = h.OldEnd(), h.NewEnd()
	}

	if oldPos < oldLen || newPos < newLen {
		ranges = append(ranges, AlignmentRange{
			Old: Span{Start: oldPos, End: oldLen},
			New: Span{Start: newPos, End: newLen},
		})
	}
	return ranges
}

func changedRange(oldStart, oldEnd, newStart, newEnd int) AlignmentRange {
	src := &SourceLines{}
	if oldEnd > oldStart {
		src.OldStart, src.OldEnd = intPtr(oldStart+1), intPtr(oldEnd)
	}
	if newEnd > newStart {
		src.NewStart, src.NewEnd = intPtr(newStart+1), intPtr(newEnd)
	}
	return AlignmentRange{
		Old:     Span{Start: oldStart, End: oldEnd},
		New:     Span{Start: newStart, End: newEnd},
		Changed: true,
		Source:  src,
	}
}

func intPtr(v int) *int { return &v }
