package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidPath is returned for paths that are absolute or leave the
// repository.
var ErrInvalidPath = errors.New("path must be relative to the repository root")

func cleanPath(p string) (string, error) {
	p = filepath.ToSlash(p)
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}

// Stage records the working tree state of path in the index. A deleted file
// is removed from the index.
func (r *Repo) Stage(ctx context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	_, err = run(ctx, r.logger, r.root, "add", "-A", "--", p)
	return err
}

// Unstage resets the index entry of path to HEAD. Before the first commit
// the path is dropped from the index instead.
func (r *Repo) Unstage(ctx context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	hasHead, err := r.hasHead(ctx)
	if err != nil {
		return err
	}
	if !hasHead {
		_, err = run(ctx, r.logger, r.root, "rm", "--cached", "-q", "--ignore-unmatch", "--", p)
		return err
	}
	_, err = run(ctx, r.logger, r.root, "reset", "-q", "HEAD", "--", p)
	return err
}

// Discard reverts path in both the index and the working tree to HEAD. A
// file that HEAD does not know is removed from the index and from disk.
func (r *Repo) Discard(ctx context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}

	inHead, err := r.inHead(ctx, p)
	if err != nil {
		return err
	}
	if inHead {
		_, err = run(ctx, r.logger, r.root, "checkout", "HEAD", "--", p)
		return err
	}

	if _, err := run(ctx, r.logger, r.root, "rm", "--cached", "-q", "--ignore-unmatch", "--", p); err != nil {
		return err
	}
	full := filepath.Join(r.root, filepath.FromSlash(p))
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p, err)
	}
	r.logger.Debug("discarded untracked file", zap.String("path", p))
	return nil
}

func (r *Repo) hasHead(ctx context.Context) (bool, error) {
	_, err := run(ctx, r.logger, r.root, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		if exitCode(err) > 0 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repo) inHead(ctx context.Context, p string) (bool, error) {
	_, err := run(ctx, r.logger, r.root, "cat-file", "-e", "HEAD:"+p)
	if err != nil {
		if exitCode(err) > 0 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasUncommittedChanges reports whether the index or the working tree,
// untracked files included, differs from HEAD.
func (r *Repo) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, err := run(ctx, r.logger, r.root, "status", "--porcelain", "-z")
	if err != nil {
		return false, err
	}
	return len(out) > 0, nil
}
