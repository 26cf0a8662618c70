// internal/review/store.go
package review

import (
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"staged/internal/errors"
	"staged/internal/storage"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Store persists reviews keyed by DiffID. Mutations are read-modify-write
// and serialized by a mutex.
type Store struct {
	mu     sync.Mutex
	store  *storage.BadgerStore
	logger *zap.Logger
}

func NewStore(db *badger.DB, codec *storage.Codec, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		store:  storage.NewBadgerStore(db, "review", codec),
		logger: logger,
	}
}

func notFound(id DiffID, err error) error {
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NotFound(fmt.Sprintf("no review for %s..%s", id.Base, id.Head)).Wrap(err)
	}
	return fmt.Errorf("getting review: %w", err)
}

// Get returns the review for id, or a NOT_FOUND error.
func (s *Store) Get(id DiffID) (*Review, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	r := &Review{}
	if err := s.store.Get(id.StorageID(), r); err != nil {
		return nil, notFound(id, err)
	}
	return r, nil
}

// GetOrCreate returns the stored review or a new empty one. The new review
// is not persisted until a mutation saves it.
func (s *Store) GetOrCreate(id DiffID) (*Review, error) {
	r, err := s.Get(id)
	if err == nil {
		return r, nil
	}
	if e, ok := errors.As(err); ok && e.Type == errors.ErrorTypeNotFound {
		return New(id), nil
	}
	return nil, err
}

// Save writes r as a whole, replacing any stored version.
func (s *Store) Save(r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(r)
}

func (s *Store) save(r *Review) error {
	if err := r.ID.Validate(); err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(r); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	return nil
}

func (s *Store) Delete(id DiffID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(id.StorageID()); err != nil {
		return notFound(id, err)
	}
	s.logger.Debug("review deleted", zap.String("base", id.Base), zap.String("head", id.Head))
	return nil
}

func (s *Store) List() ([]*Review, error) {
	var reviews []*Review
	if err := s.store.List(&reviews); err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return reviews, nil
}

// mutate loads or creates the review, applies fn and saves the result.
func (s *Store) mutate(id DiffID, fn func(*Review) error) (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := s.save(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) AddComment(id DiffID, in NewComment) (*Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := in.build()
	_, err := s.mutate(id, func(r *Review) error {
		r.Comments = append(r.Comments, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("comment added",
		zap.String("review", id.StorageID()),
		zap.String("path", c.FilePath),
		zap.Int("range", c.RangeIndex))
	return &c, nil
}

func (s *Store) DeleteComment(id DiffID, commentID string) error {
	_, err := s.mutate(id, func(r *Review) error {
		for i, c := range r.Comments {
			if c.ID == commentID {
				r.Comments = append(r.Comments[:i], r.Comments[i+1:]...)
				return nil
			}
		}
		return errors.NotFound(fmt.Sprintf("comment not found: %s", commentID))
	})
	return err
}

func (s *Store) MarkReviewed(id DiffID, path string) (*Review, error) {
	if path == "" {
		return nil, errors.ValidationError("path is required", nil)
	}
	return s.mutate(id, func(r *Review) error {
		r.markReviewed(path)
		return nil
	})
}

func (s *Store) UnmarkReviewed(id DiffID, path string) (*Review, error) {
	if path == "" {
		return nil, errors.ValidationError("path is required", nil)
	}
	return s.mutate(id, func(r *Review) error {
		r.unmarkReviewed(path)
		return nil
	})
}

func (s *Store) AddEdit(id DiffID, in NewEdit) (*Edit, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := in.build()
	if _, err := s.mutate(id, func(r *Review) error {
		r.Edits = append(r.Edits, e)
		return nil
	}); err != nil {
		return nil, err
	}
	return &e, nil
}
