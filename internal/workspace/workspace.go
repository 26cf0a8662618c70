// internal/workspace/workspace.go
package workspace

import (
	"context"
	"fmt"
	"sync"

	"staged/internal/config"
	"staged/internal/filediff"
	"staged/internal/git"
	"staged/internal/linediff"
	"staged/internal/review"
	"staged/internal/storage"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Workspace bundles the repository and the services built on it. The
// review database is opened on first use since badger holds a directory
// lock.
type Workspace struct {
	Config *config.Config
	Logger *zap.Logger
	Repo   *git.Repo
	Diffs  *filediff.Service

	mu      sync.Mutex
	db      *badger.DB
	reviews *review.Store
}

// Open discovers the repository at path (or cfg.Repo) and wires the diff
// service with the configured algorithm.
func Open(ctx context.Context, path string, cfg *config.Config, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = cfg.Repo
	}

	repo, err := git.Open(ctx, path, logger.Named("git"))
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	differ, err := linediff.New(cfg.Diff.Algorithm)
	if err != nil {
		return nil, err
	}

	diffs, err := filediff.NewService(repo, differ, filediff.Options{CacheSize: cfg.Diff.CacheSize}, logger.Named("diff"))
	if err != nil {
		return nil, err
	}

	logger.Debug("workspace opened",
		zap.String("root", repo.Root()),
		zap.String("algorithm", cfg.Diff.Algorithm))

	return &Workspace{
		Config: cfg,
		Logger: logger,
		Repo:   repo,
		Diffs:  diffs,
	}, nil
}

// Reviews opens the review database on first call.
func (w *Workspace) Reviews() (*review.Store, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reviews != nil {
		return w.reviews, nil
	}

	path, err := w.Config.DatabasePath()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	codec, err := storage.NewCodec(storage.DefaultCodecOptions())
	if err != nil {
		db.Close()
		return nil, err
	}

	w.db = db
	w.reviews = review.NewStore(db, codec, w.Logger.Named("review"))
	return w.reviews, nil
}

// Close releases the review database if it was opened.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db, w.reviews = nil, nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
