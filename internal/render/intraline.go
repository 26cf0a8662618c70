package render

import (
	"github.com/mattn/go-runewidth"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// segment is a run of text, flagged when it differs from the paired line.
type segment struct {
	text    string
	changed bool
}

// highlight splits line into segments against its counterpart. When added
// is set line is the new text and peer the old one.
func highlight(line, peer string, added bool) []segment {
	oldText, newText := peer, line
	if !added {
		oldText, newText = line, peer
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	var segs []segment
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			segs = appendSegment(segs, d.Text, false)
		case diffmatchpatch.DiffDelete:
			if !added {
				segs = appendSegment(segs, d.Text, true)
			}
		case diffmatchpatch.DiffInsert:
			if added {
				segs = appendSegment(segs, d.Text, true)
			}
		}
	}
	return segs
}

func appendSegment(segs []segment, text string, changed bool) []segment {
	if text == "" {
		return segs
	}
	if n := len(segs); n > 0 && segs[n-1].changed == changed {
		segs[n-1].text += text
		return segs
	}
	return append(segs, segment{text: text, changed: changed})
}

// fit truncates segments to width cells, marking the cut with an ellipsis,
// and returns the width used.
func fit(segs []segment, width int) ([]segment, int) {
	total := 0
	for _, s := range segs {
		total += runewidth.StringWidth(s.text)
	}
	if total <= width {
		return segs, total
	}

	const tail = "…"
	budget := width - runewidth.StringWidth(tail)
	var out []segment
	used := 0
	for _, s := range segs {
		if budget <= 0 {
			break
		}
		w := runewidth.StringWidth(s.text)
		if w <= budget {
			out = append(out, s)
			used += w
			budget -= w
			continue
		}
		cut := runewidth.Truncate(s.text, budget, "")
		out = append(out, segment{text: cut, changed: s.changed})
		used += runewidth.StringWidth(cut)
		break
	}
	if width > 0 {
		out = appendSegment(out, tail, false)
		used += runewidth.StringWidth(tail)
	}
	return out, used
}
