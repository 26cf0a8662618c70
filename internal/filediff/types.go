package filediff

import (
	"staged/internal/diff"
	"staged/internal/git"
)

// DiffSide is one pane of a file diff. Path is nil when the file does not
// exist on that side.
type DiffSide struct {
	Path *string        `json:"path"`
	Rows []diff.DiffRow `json:"lines"`
}

// FileDiff is the complete side-by-side diff of one file between two refs.
type FileDiff struct {
	Path   string                `json:"path"`
	Base   string                `json:"base"`
	Head   string                `json:"head"`
	Status git.FileStatus        `json:"status"`
	Binary bool                  `json:"is_binary"`
	Hunks  []diff.Hunk           `json:"hunks"`
	Before DiffSide              `json:"before"`
	After  DiffSide              `json:"after"`
	Ranges []diff.AlignmentRange `json:"ranges"`
	Stats  diff.Stats            `json:"stats"`
}

// Format returns the hunks as unified diff text.
func (f *FileDiff) Format() string {
	return diff.FormatHunks(f.Hunks)
}
