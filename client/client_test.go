package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"staged/internal/diff"
	"staged/internal/errors"
	"staged/internal/filediff"
	"staged/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Diff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/diff", r.URL.Path)
		assert.Equal(t, "main", r.URL.Query().Get("base"))
		assert.Equal(t, "@", r.URL.Query().Get("head"))

		if r.URL.Query().Get("path") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(errors.NotFound("file 'missing' not found"))
			return
		}
		json.NewEncoder(w).Encode(filediff.FileDiff{
			Path:  "a.txt",
			Hunks: []diff.Hunk{{OldStart: 0, NewStart: 0, NewLines: 1}},
			After: filediff.DiffSide{Rows: []diff.DiffRow{diff.LineRow(1, "x", diff.Added)}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	fd, err := c.Diff(ctx, "main", "@", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", fd.Path)
	assert.Equal(t, diff.Added, fd.After.Rows[0].Kind)

	_, err = c.Diff(ctx, "main", "@", "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.StatusCode(err))
	assert.Contains(t, err.Error(), "missing")
}

func TestClient_Review(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)

		switch {
		case r.URL.Path == "/api/reviews/comments" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(review.Comment{ID: "c1", FilePath: "a.txt"})
		case r.Method == http.MethodDelete && r.URL.Path != "/api/reviews/reviewed":
			w.WriteHeader(http.StatusNoContent)
		default:
			json.NewEncoder(w).Encode(review.New(review.DiffID{Base: "main", Head: "@"}))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	id := review.DiffID{Base: "main", Head: "@"}

	comment, err := c.AddComment(ctx, id, review.NewComment{FilePath: "a.txt", Text: "hm"})
	require.NoError(t, err)
	assert.Equal(t, "c1", comment.ID)
	assert.Equal(t, "hm", gotBody["text"])

	require.NoError(t, c.DeleteComment(ctx, id, "c1"))
	assert.Equal(t, "/api/reviews/comments/c1", gotPath)

	_, err = c.MarkReviewed(ctx, id, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "a.txt", gotBody["path"])

	_, err = c.UnmarkReviewed(ctx, id, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)

	rv, err := c.Review(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "main", rv.ID.Base)

	require.NoError(t, c.DeleteReview(ctx, id))
}

func TestClient_Index(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, r.Method+" "+r.URL.Path+" "+body["path"])

		if r.URL.Path == "/api/status" {
			w.Write([]byte(`{"dirty":true}`))
			return
		}
		if body["path"] == "../x" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errors.ValidationError("path must be relative to the repository root", nil))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.Stage(ctx, "a.txt"))
	require.NoError(t, c.Unstage(ctx, "a.txt"))
	require.NoError(t, c.Discard(ctx, "b.txt"))

	err := c.Stage(ctx, "../x")
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))

	dirty, err := c.Dirty(ctx)
	require.NoError(t, err)
	assert.True(t, dirty)

	assert.Equal(t, []string{
		"POST /api/files/stage a.txt",
		"POST /api/files/unstage a.txt",
		"POST /api/files/discard b.txt",
		"POST /api/files/stage ../x",
		"GET /api/status ",
	}, calls)
}
