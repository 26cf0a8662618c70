package review

import (
	"slices"
	"strings"
	"time"

	"staged/internal/errors"
	"staged/shared/utils"

	"github.com/google/uuid"
)

// WorkingTree is the head ref naming uncommitted changes.
const WorkingTree = "@"

// DiffID identifies a diff by its two endpoints.
type DiffID struct {
	Base string `json:"base"`
	Head string `json:"head"`
}

// StorageID is a stable key derived from both refs.
func (d DiffID) StorageID() string {
	return utils.ShortHash([]byte(d.Base+".."+d.Head), 16)
}

func (d DiffID) IsWorkingTree() bool {
	return d.Head == WorkingTree
}

func (d DiffID) Validate() error {
	if d.Base == "" || d.Head == "" {
		return errors.ValidationError("base and head are required", map[string]string{"base": d.Base, "head": d.Head})
	}
	return nil
}

// Review is the review state of one diff.
type Review struct {
	ID        DiffID    `json:"id"`
	Reviewed  []string  `json:"reviewed"`
	Comments  []Comment `json:"comments"`
	Edits     []Edit    `json:"edits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(id DiffID) *Review {
	now := time.Now().UTC()
	return &Review{
		ID:        id,
		Reviewed:  []string{},
		Comments:  []Comment{},
		Edits:     []Edit{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Review) GetID() string {
	return r.ID.StorageID()
}

// IsReviewed reports whether path has been marked reviewed.
func (r *Review) IsReviewed(path string) bool {
	_, found := slices.BinarySearch(r.Reviewed, path)
	return found
}

// markReviewed inserts path keeping Reviewed sorted and unique.
func (r *Review) markReviewed(path string) bool {
	i, found := slices.BinarySearch(r.Reviewed, path)
	if found {
		return false
	}
	r.Reviewed = slices.Insert(r.Reviewed, i, path)
	return true
}

func (r *Review) unmarkReviewed(path string) bool {
	i, found := slices.BinarySearch(r.Reviewed, path)
	if !found {
		return false
	}
	r.Reviewed = slices.Delete(r.Reviewed, i, i+1)
	return true
}

// CommentsFor returns the comments on path.
func (r *Review) CommentsFor(path string) []Comment {
	var out []Comment
	for _, c := range r.Comments {
		if c.FilePath == path {
			out = append(out, c)
		}
	}
	return out
}

// Comment is attached to one alignment range of a file's diff.
type Comment struct {
	ID         string    `json:"id"`
	FilePath   string    `json:"file_path"`
	RangeIndex int       `json:"range_index"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Edit records a change made during review as unified diff text.
type Edit struct {
	ID        string    `json:"id"`
	FilePath  string    `json:"file_path"`
	Diff      string    `json:"diff"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment is the input for adding a comment.
type NewComment struct {
	FilePath   string `json:"file_path"`
	RangeIndex int    `json:"range_index"`
	Text       string `json:"text"`
}

func (c NewComment) Validate() error {
	details := map[string]string{}
	if c.FilePath == "" {
		details["file_path"] = "required"
	}
	if c.RangeIndex < 0 {
		details["range_index"] = "must not be negative"
	}
	if strings.TrimSpace(c.Text) == "" {
		details["text"] = "required"
	}
	if len(details) > 0 {
		return errors.ValidationError("invalid comment", details)
	}
	return nil
}

func (c NewComment) build() Comment {
	return Comment{
		ID:         uuid.New().String(),
		FilePath:   c.FilePath,
		RangeIndex: c.RangeIndex,
		Text:       c.Text,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewEdit is the input for recording an edit.
type NewEdit struct {
	FilePath string `json:"file_path"`
	Diff     string `json:"diff"`
}

func (e NewEdit) Validate() error {
	details := map[string]string{}
	if e.FilePath == "" {
		details["file_path"] = "required"
	}
	if e.Diff == "" {
		details["diff"] = "required"
	}
	if len(details) > 0 {
		return errors.ValidationError("invalid edit", details)
	}
	return nil
}

func (e NewEdit) build() Edit {
	return Edit{
		ID:        uuid.New().String(),
		FilePath:  e.FilePath,
		Diff:      e.Diff,
		CreatedAt: time.Now().UTC(),
	}
}
