// Package diff is the side-by-side alignment engine.
//
// Given the full content of both versions of a file and the hunks a line
// differ found between them, it produces:
//   - alignment ranges that tile both files exactly, pairing each changed
//     region with its counterpart (Align);
//   - two pane row sequences in which every line of each version appears
//     once, in order, with runs that exist on one side only summarized by
//     collapse indicators in the other pane (BuildRows).
//
// Hunk starts are 0-indexed offsets; line numbers inside hunks and rows are
// 1-indexed. Computing hunks is not this package's job, see
// staged/internal/linediff.
package diff
