package render

import (
	"fmt"
	"io"

	"staged/internal/diff"
)

// Unified prints hunks as colored unified diff text with file headers.
func Unified(w io.Writer, path string, hunks []diff.Hunk) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", headerColor.Sprint("--- a/"+path), headerColor.Sprint("+++ b/"+path)); err != nil {
		return err
	}

	for _, h := range hunks {
		if _, err := hunkColor.Fprintln(w, h.UnifiedHeader()); err != nil {
			return err
		}
		for _, line := range h.Lines {
			var err error
			switch line.Kind {
			case diff.Added:
				_, err = addedColor.Fprintln(w, "+"+line.Content)
			case diff.Removed:
				_, err = removedColor.Fprintln(w, "-"+line.Content)
			default:
				_, err = fmt.Fprintln(w, " "+line.Content)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
