// client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"staged/internal/errors"
	"staged/internal/filediff"
	"staged/internal/git"
	"staged/internal/review"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var apiErr errors.Error
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			apiErr.Code = resp.StatusCode
			return &apiErr
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func refs(base, head string) url.Values {
	return url.Values{"base": {base}, "head": {head}}
}

// Diff operations
func (c *Client) Diff(ctx context.Context, base, head, path string) (*filediff.FileDiff, error) {
	q := refs(base, head)
	q.Set("path", path)

	var fd filediff.FileDiff
	if err := c.do(ctx, http.MethodGet, "/api/diff", q, nil, &fd, http.StatusOK); err != nil {
		return nil, err
	}
	return &fd, nil
}

func (c *Client) Files(ctx context.Context, base, head string, globs ...string) ([]git.ChangedFile, error) {
	q := refs(base, head)
	for _, g := range globs {
		q.Add("glob", g)
	}

	var files []git.ChangedFile
	if err := c.do(ctx, http.MethodGet, "/api/files", q, nil, &files, http.StatusOK); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) Refs(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/refs", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// Review operations
// Dirty reports whether the server's working tree differs from HEAD.
func (c *Client) Dirty(ctx context.Context) (bool, error) {
	var out struct {
		Dirty bool `json:"dirty"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Dirty, nil
}

// Stage adds the working tree state of path to the index.
func (c *Client) Stage(ctx context.Context, path string) error {
	return c.updateIndex(ctx, "stage", path)
}

func (c *Client) Unstage(ctx context.Context, path string) error {
	return c.updateIndex(ctx, "unstage", path)
}

// Discard reverts path to HEAD in the index and the working tree.
func (c *Client) Discard(ctx context.Context, path string) error {
	return c.updateIndex(ctx, "discard", path)
}

func (c *Client) updateIndex(ctx context.Context, action, path string) error {
	body := map[string]string{"path": path}
	return c.do(ctx, http.MethodPost, "/api/files/"+action, nil, body, nil, http.StatusNoContent)
}

func (c *Client) Review(ctx context.Context, id review.DiffID) (*review.Review, error) {
	var rv review.Review
	if err := c.do(ctx, http.MethodGet, "/api/reviews", refs(id.Base, id.Head), nil, &rv, http.StatusOK); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (c *Client) DeleteReview(ctx context.Context, id review.DiffID) error {
	return c.do(ctx, http.MethodDelete, "/api/reviews", refs(id.Base, id.Head), nil, nil, http.StatusNoContent)
}

func (c *Client) AddComment(ctx context.Context, id review.DiffID, in review.NewComment) (*review.Comment, error) {
	var out review.Comment
	if err := c.do(ctx, http.MethodPost, "/api/reviews/comments", refs(id.Base, id.Head), in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, id review.DiffID, commentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/reviews/comments/"+url.PathEscape(commentID),
		refs(id.Base, id.Head), nil, nil, http.StatusNoContent)
}

func (c *Client) MarkReviewed(ctx context.Context, id review.DiffID, path string) (*review.Review, error) {
	return c.setReviewed(ctx, http.MethodPost, id, path)
}

func (c *Client) UnmarkReviewed(ctx context.Context, id review.DiffID, path string) (*review.Review, error) {
	return c.setReviewed(ctx, http.MethodDelete, id, path)
}

func (c *Client) setReviewed(ctx context.Context, method string, id review.DiffID, path string) (*review.Review, error) {
	var rv review.Review
	body := map[string]string{"path": path}
	if err := c.do(ctx, method, "/api/reviews/reviewed", refs(id.Base, id.Head), body, &rv, http.StatusOK); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (c *Client) AddEdit(ctx context.Context, id review.DiffID, in review.NewEdit) (*review.Edit, error) {
	var out review.Edit
	if err := c.do(ctx, http.MethodPost, "/api/reviews/edits", refs(id.Base, id.Head), in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil, http.StatusOK)
}
