// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"staged/internal/errors"
	"staged/internal/filediff"
	"staged/internal/git"
	"staged/internal/logging"
	"staged/internal/review"
	"staged/internal/validation"

	"go.uber.org/zap"
)

const defaultBase = "HEAD"

type DiffService interface {
	Get(ctx context.Context, base, head, path string) (*filediff.FileDiff, error)
	List(ctx context.Context, base, head string, patterns ...string) ([]git.ChangedFile, error)
}

// Repository is the working tree side of the git collaborator.
type Repository interface {
	ListRefs(ctx context.Context) ([]string, error)
	Stage(ctx context.Context, path string) error
	Unstage(ctx context.Context, path string) error
	Discard(ctx context.Context, path string) error
	HasUncommittedChanges(ctx context.Context) (bool, error)
}

type ReviewStore interface {
	GetOrCreate(id review.DiffID) (*review.Review, error)
	Delete(id review.DiffID) error
	AddComment(id review.DiffID, in review.NewComment) (*review.Comment, error)
	DeleteComment(id review.DiffID, commentID string) error
	MarkReviewed(id review.DiffID, path string) (*review.Review, error)
	UnmarkReviewed(id review.DiffID, path string) (*review.Review, error)
	AddEdit(id review.DiffID, in review.NewEdit) (*review.Edit, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders err as a typed error body. Untyped errors are logged
// and reported as internal without their message.
func writeError(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	e, ok := errors.As(err)
	if !ok {
		e = errors.Internal("internal error")
	}
	if e.Code >= http.StatusInternalServerError {
		logger.WithRequestID(r.Context()).Error("request failed", zap.Error(err))
	}
	writeJSON(w, e.Code, e)
}

// diffRefs reads base and head, defaulting to HEAD and the working tree.
func diffRefs(r *http.Request) (base, head string) {
	return validation.QueryDefault(r, "base", defaultBase), validation.QueryDefault(r, "head", git.WorkingTree)
}

type DiffHandler struct {
	diffs  DiffService
	repo   Repository
	logger *logging.Logger
}

func NewDiffHandler(diffs DiffService, repo Repository, logger *logging.Logger) *DiffHandler {
	return &DiffHandler{diffs: diffs, repo: repo, logger: logger}
}

func (h *DiffHandler) Get(w http.ResponseWriter, r *http.Request) {
	params, err := validation.RequireQuery(r, "path")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	base, head := diffRefs(r)

	fd, err := h.diffs.Get(r.Context(), base, head, params["path"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, fd)
}

func (h *DiffHandler) Files(w http.ResponseWriter, r *http.Request) {
	base, head := diffRefs(r)

	files, err := h.diffs.List(r.Context(), base, head, r.URL.Query()["glob"]...)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if files == nil {
		files = []git.ChangedFile{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *DiffHandler) Refs(w http.ResponseWriter, r *http.Request) {
	refs, err := h.repo.ListRefs(r.Context())
	if err != nil {
		writeError(w, r, h.logger, git.Translate(err, "list refs"))
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

// StatusResponse reports whether the working tree differs from HEAD.
type StatusResponse struct {
	Dirty bool `json:"dirty"`
}

func (h *DiffHandler) Status(w http.ResponseWriter, r *http.Request) {
	dirty, err := h.repo.HasUncommittedChanges(r.Context())
	if err != nil {
		writeError(w, r, h.logger, git.Translate(err, "read the working tree status"))
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Dirty: dirty})
}

func (h *DiffHandler) Stage(w http.ResponseWriter, r *http.Request) {
	h.updateIndex(w, r, "stage", h.repo.Stage)
}

func (h *DiffHandler) Unstage(w http.ResponseWriter, r *http.Request) {
	h.updateIndex(w, r, "unstage", h.repo.Unstage)
}

func (h *DiffHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.updateIndex(w, r, "discard", h.repo.Discard)
}

func (h *DiffHandler) updateIndex(w http.ResponseWriter, r *http.Request, action string, op func(context.Context, string) error) {
	req, err := validation.DecodeRequest[PathRequest](w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := op(r.Context(), req.Path); err != nil {
		writeError(w, r, h.logger, git.Translate(err, action+" "+req.Path))
		return
	}
	h.logger.WithRequestID(r.Context()).Info("index updated", zap.String("action", action), zap.String("path", req.Path))
	w.WriteHeader(http.StatusNoContent)
}

type ReviewHandler struct {
	store  ReviewStore
	logger *logging.Logger
}

func NewReviewHandler(store ReviewStore, logger *logging.Logger) *ReviewHandler {
	return &ReviewHandler{store: store, logger: logger}
}

func (h *ReviewHandler) diffID(w http.ResponseWriter, r *http.Request) (review.DiffID, bool) {
	params, err := validation.RequireQuery(r, "base", "head")
	if err != nil {
		writeError(w, r, h.logger, err)
		return review.DiffID{}, false
	}
	return review.DiffID{Base: params["base"], Head: params["head"]}, true
}

func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.diffID(w, r)
	if !ok {
		return
	}
	rv, err := h.store.GetOrCreate(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.diffID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.diffID(w, r)
	if !ok {
		return
	}
	in, err := validation.DecodeRequest[review.NewComment](w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	c, err := h.store.AddComment(id, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ReviewHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.diffID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteComment(id, r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PathRequest names one repository file.
type PathRequest struct {
	Path string `json:"path"`
}

func (req PathRequest) Validate() error {
	if req.Path == "" {
		return errors.ValidationError("path is required", nil)
	}
	return nil
}

func (h *ReviewHandler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	h.setReviewed(w, r, h.store.MarkReviewed)
}

func (h *ReviewHandler) UnmarkReviewed(w http.ResponseWriter, r *http.Request) {
	h.setReviewed(w, r, h.store.UnmarkReviewed)
}

func (h *ReviewHandler) setReviewed(w http.ResponseWriter, r *http.Request, op func(review.DiffID, string) (*review.Review, error)) {
	id, ok := h.diffID(w, r)
	if !ok {
		return
	}
	req, err := validation.DecodeRequest[PathRequest](w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rv, err := op(id, req.Path)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandler) AddEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.diffID(w, r)
	if !ok {
		return
	}
	in, err := validation.DecodeRequest[review.NewEdit](w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	e, err := h.store.AddEdit(id, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}
