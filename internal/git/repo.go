// internal/git/repo.go
package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// WorkingTree is the ref naming the files on disk, including uncommitted
// and untracked changes.
const WorkingTree = "@"

// RepoEnv overrides the starting directory for repository discovery.
const RepoEnv = "STAGED_REPO"

type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusDeleted  FileStatus = "deleted"
	StatusModified FileStatus = "modified"
)

// ChangedFile is one path that differs between two refs.
type ChangedFile struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`
}

type Repo struct {
	root   string
	logger *zap.Logger
}

// Open discovers the repository containing path. An empty path falls back to
// $STAGED_REPO and then the current directory.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Repo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = os.Getenv(RepoEnv)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		path = wd
	}

	root, err := runString(ctx, logger, path, "rev-parse", "--show-toplevel")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepo, path)
		}
		return nil, err
	}

	logger.Debug("opened repository", zap.String("root", root))
	return &Repo{root: root, logger: logger}, nil
}

func (r *Repo) Root() string {
	return r.root
}

// Content returns the bytes of path at ref. The boolean is false when the
// ref or the path does not exist there.
func (r *Repo) Content(ctx context.Context, ref, path string) ([]byte, bool, error) {
	if ref == WorkingTree {
		return r.workdirContent(path)
	}

	object := ref + ":" + filepath.ToSlash(path)
	blob, err := runString(ctx, r.logger, r.root, "rev-parse", "--verify", "--quiet", object)
	if err != nil {
		if exitCode(err) > 0 {
			return nil, false, nil
		}
		return nil, false, err
	}

	out, err := run(ctx, r.logger, r.root, "cat-file", "blob", blob)
	if err != nil {
		// Directories and submodules resolve but are not blobs.
		if exitCode(err) > 0 {
			return nil, false, nil
		}
		return nil, false, err
	}
	return out, true, nil
}

// workdirContent reads path from disk. Read failures count as absence.
func (r *Repo) workdirContent(path string) ([]byte, bool, error) {
	full := filepath.Join(r.root, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("treating unreadable file as absent", zap.String("path", path), zap.Error(err))
		}
		return nil, false, nil
	}
	return data, true, nil
}

// ResolveRef returns the full SHA of ref. The working tree resolves to itself.
func (r *Repo) ResolveRef(ctx context.Context, ref string) (string, error) {
	if ref == WorkingTree {
		return WorkingTree, nil
	}
	return runString(ctx, r.logger, r.root, "rev-parse", "--verify", ref+"^{commit}")
}

// ListRefs returns branch, remote and tag names for completion.
func (r *Repo) ListRefs(ctx context.Context) ([]string, error) {
	out, err := runString(ctx, r.logger, r.root,
		"for-each-ref", "--format=%(refname:short)", "refs/heads", "refs/remotes", "refs/tags")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}

func (r *Repo) MergeBase(ctx context.Context, a, b string) (string, error) {
	return runString(ctx, r.logger, r.root, "merge-base", a, b)
}

// ChangedFiles lists paths that differ between base and head, sorted by path.
// When patterns are given only paths matching at least one doublestar glob
// are returned.
func (r *Repo) ChangedFiles(ctx context.Context, base, head string, patterns ...string) ([]ChangedFile, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	args := []string{"diff", "--name-status", "--no-renames", "-z", base}
	if head != WorkingTree {
		args = append(args, head)
	}
	out, err := run(ctx, r.logger, r.root, args...)
	if err != nil {
		return nil, err
	}

	files := parseNameStatus(out)

	if head == WorkingTree {
		untracked, err := run(ctx, r.logger, r.root, "ls-files", "--others", "--exclude-standard", "-z")
		if err != nil {
			return nil, err
		}
		for _, p := range splitNul(untracked) {
			files = append(files, ChangedFile{Path: p, Status: StatusAdded})
		}
	}

	filtered := files[:0]
	for _, f := range files {
		if matchAny(patterns, f.Path) {
			filtered = append(filtered, f)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Path < filtered[j].Path })
	return filtered, nil
}

func matchAny(patterns []string, path string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// parseNameStatus parses `git diff --name-status -z` output: a status field
// followed by a path, both NUL terminated.
func parseNameStatus(out []byte) []ChangedFile {
	fields := splitNul(out)
	files := make([]ChangedFile, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		files = append(files, ChangedFile{Path: fields[i+1], Status: statusFromLetter(fields[i])})
	}
	return files
}

func statusFromLetter(s string) FileStatus {
	switch {
	case strings.HasPrefix(s, "A"):
		return StatusAdded
	case strings.HasPrefix(s, "D"):
		return StatusDeleted
	default:
		return StatusModified
	}
}

func splitNul(out []byte) []string {
	s := strings.TrimSuffix(string(out), "\x00")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}
