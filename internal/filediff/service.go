// internal/filediff/service.go
package filediff

import (
	"context"
	"fmt"
	"strings"

	"staged/internal/diff"
	"staged/internal/errors"
	"staged/internal/git"
	"staged/internal/linediff"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source supplies file versions and ref metadata.
type Source interface {
	Content(ctx context.Context, ref, path string) ([]byte, bool, error)
	ResolveRef(ctx context.Context, ref string) (string, error)
	ChangedFiles(ctx context.Context, base, head string, patterns ...string) ([]git.ChangedFile, error)
}

const defaultConcurrency = 8

type Options struct {
	// CacheSize bounds the number of cached diffs between immutable refs.
	// Zero disables caching.
	CacheSize int
	// Concurrency bounds GetMany's fan-out.
	Concurrency int
}

type Service struct {
	source Source
	differ linediff.Differ
	cache  *lru.Cache[string, *FileDiff]
	opts   Options
	logger *zap.Logger
}

func NewService(source Source, differ linediff.Differ, opts Options, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}

	s := &Service{
		source: source,
		differ: differ,
		opts:   opts,
		logger: logger,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *FileDiff](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating diff cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Get computes the diff of path between base and head. head may be
// git.WorkingTree. A path absent from both refs is NOT_FOUND.
func (s *Service) Get(ctx context.Context, base, head, path string) (*FileDiff, error) {
	if path == "" {
		return nil, errors.ValidationError("path is required", nil)
	}

	key := s.cacheKey(ctx, base, head, path)
	if key != "" {
		if fd, ok := s.cache.Get(key); ok {
			s.logger.Debug("diff cache hit", zap.String("path", path))
			return fd, nil
		}
	}

	before, after, err := s.contents(ctx, base, head, path)
	if err != nil {
		return nil, err
	}
	if before == nil && after == nil {
		return nil, errors.NotFound(fmt.Sprintf("file '%s' not found in either %s or %s", path, base, head))
	}

	fd, err := s.build(base, head, path, before, after)
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.cache.Add(key, fd)
	}
	return fd, nil
}

// cacheKey returns "" when the diff involves the working tree or a ref that
// does not resolve.
func (s *Service) cacheKey(ctx context.Context, base, head, path string) string {
	if s.cache == nil || base == git.WorkingTree || head == git.WorkingTree {
		return ""
	}
	baseSHA, err := s.source.ResolveRef(ctx, base)
	if err != nil {
		return ""
	}
	headSHA, err := s.source.ResolveRef(ctx, head)
	if err != nil {
		return ""
	}
	return baseSHA + ".." + headSHA + ":" + path
}

// contents reads both sides concurrently. A nil result means absent.
func (s *Service) contents(ctx context.Context, base, head, path string) (before, after []byte, err error) {
	g, ctx := errgroup.WithContext(ctx)

	read := func(ref string, dst *[]byte) func() error {
		return func() error {
			data, ok, err := s.source.Content(ctx, ref, path)
			if err != nil {
				return git.Translate(err, "read "+ref)
			}
			if ok {
				if data == nil {
					data = []byte{}
				}
				*dst = data
			}
			return nil
		}
	}
	g.Go(read(base, &before))
	g.Go(read(head, &after))

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (s *Service) build(base, head, path string, before, after []byte) (*FileDiff, error) {
	fd := &FileDiff{
		Path:   path,
		Base:   base,
		Head:   head,
		Status: status(before != nil, after != nil),
	}

	if diff.IsBinary(before) || diff.IsBinary(after) {
		fd.Binary = true
		fd.Before = DiffSide{Path: &path, Rows: []diff.DiffRow{}}
		fd.After = DiffSide{Path: &path, Rows: []diff.DiffRow{}}
		fd.Hunks = []diff.Hunk{}
		fd.Ranges = []diff.AlignmentRange{}
		return fd, nil
	}

	beforeText := text(before)
	afterText := text(after)

	var hunks []diff.Hunk
	if beforeText != nil && afterText != nil {
		var err error
		hunks, err = s.differ.Hunks(*beforeText, *afterText)
		if err != nil {
			return nil, errors.Internal(fmt.Sprintf("diffing %s", path)).Wrap(err)
		}
	}

	res := diff.Build(diff.Input{Before: beforeText, After: afterText, Hunks: hunks})

	fd.Hunks = nonNil(res.Hunks)
	fd.Ranges = nonNil(res.Ranges)
	fd.Stats = res.Stats
	fd.Before = DiffSide{Rows: nonNil(res.OldRows)}
	fd.After = DiffSide{Rows: nonNil(res.NewRows)}
	if before != nil {
		fd.Before.Path = &path
	}
	if after != nil {
		fd.After.Path = &path
	}

	s.logger.Debug("built diff",
		zap.String("path", path),
		zap.String("status", string(fd.Status)),
		zap.Int("hunks", len(fd.Hunks)),
		zap.Int("additions", fd.Stats.Additions),
		zap.Int("deletions", fd.Stats.Deletions))
	return fd, nil
}

// GetMany diffs paths concurrently and returns results in input order.
func (s *Service) GetMany(ctx context.Context, base, head string, paths []string) ([]*FileDiff, error) {
	results := make([]*FileDiff, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, p := range paths {
		g.Go(func() error {
			fd, err := s.Get(ctx, base, head, p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			results[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// List returns the files changed between base and head matching patterns.
func (s *Service) List(ctx context.Context, base, head string, patterns ...string) ([]git.ChangedFile, error) {
	files, err := s.source.ChangedFiles(ctx, base, head, patterns...)
	if err != nil {
		return nil, git.Translate(err, "list changes in "+base+".."+head)
	}
	return files, nil
}

func status(hasBefore, hasAfter bool) git.FileStatus {
	switch {
	case !hasBefore:
		return git.StatusAdded
	case !hasAfter:
		return git.StatusDeleted
	default:
		return git.StatusModified
	}
}

// text decodes content lossily as UTF-8.
func text(content []byte) *string {
	if content == nil {
		return nil
	}
	s := strings.ToValidUTF8(string(content), "�")
	return &s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
