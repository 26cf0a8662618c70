// internal/storage/badger_store.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("entity not found")
	ErrExists   = errors.New("entity already exists")
)

// Entity represents any storable entity with an ID
type Entity interface {
	GetID() string
}

// BadgerStore provides generic storage operations over one key prefix.
// Values are JSON, compressed by the codec when they are large enough.
type BadgerStore struct {
	db     *badger.DB
	prefix string
	codec  *Codec
}

func NewBadgerStore(db *badger.DB, prefix string, codec *Codec) *BadgerStore {
	return &BadgerStore{
		db:     db,
		prefix: prefix,
		codec:  codec,
	}
}

// Open opens a badger database at path. An empty path opens an in-memory
// database.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	opts.Logger = nil // Disable logging noise

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func (s *BadgerStore) makeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", s.prefix, id))
}

func (s *BadgerStore) stripPrefix(key []byte) string {
	return strings.TrimPrefix(string(key), fmt.Sprintf("%s:", s.prefix))
}

func (s *BadgerStore) encode(entity Entity) ([]byte, error) {
	if entity.GetID() == "" {
		return nil, fmt.Errorf("entity ID cannot be empty")
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshaling entity: %w", err)
	}
	if s.codec == nil {
		return data, nil
	}
	return s.codec.Encode(data)
}

func (s *BadgerStore) decode(val []byte, out interface{}) error {
	data := val
	if s.codec != nil {
		var err error
		if data, err = s.codec.Decode(val); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, out)
}

func (s *BadgerStore) Create(entity Entity) error {
	data, err := s.encode(entity)
	if err != nil {
		return err
	}

	key := s.makeKey(entity.GetID())
	return s.db.Update(func(txn *badger.Txn) error {
		// Check if key already exists
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrExists, entity.GetID())
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, data)
	})
}

func (s *BadgerStore) Get(id string, entity Entity) error {
	key := s.makeKey(id)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return s.decode(val, entity)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func (s *BadgerStore) Update(entity Entity) error {
	data, err := s.encode(entity)
	if err != nil {
		return err
	}

	key := s.makeKey(entity.GetID())
	return s.db.Update(func(txn *badger.Txn) error {
		// Check if exists
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, entity.GetID())
		} else if err != nil {
			return err
		}

		return txn.Set(key, data)
	})
}

// Put creates or replaces an entity.
func (s *BadgerStore) Put(entity Entity) error {
	data, err := s.encode(entity)
	if err != nil {
		return err
	}

	key := s.makeKey(entity.GetID())
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) Delete(id string) error {
	key := s.makeKey(id)

	return s.db.Update(func(txn *badger.Txn) error {
		// Check if exists
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		} else if err != nil {
			return err
		}

		return txn.Delete(key)
	})
}

// Keys returns the IDs of every entity under the prefix, in key order.
func (s *BadgerStore) Keys() ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(s.prefix + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, s.stripPrefix(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return ids, nil
}

func (s *BadgerStore) List(results interface{}) error {
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(s.prefix + ":")
		var values []json.RawMessage

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				data := val
				if s.codec != nil {
					var err error
					if data, err = s.codec.Decode(val); err != nil {
						return err
					}
				}
				values = append(values, append(json.RawMessage(nil), data...))
				return nil
			})
			if err != nil {
				return err
			}
		}

		// Marshal collected values into final result
		data, err := json.Marshal(values)
		if err != nil {
			return err
		}

		return json.Unmarshal(data, results)
	})

	if err != nil {
		return fmt.Errorf("listing entities: %w", err)
	}
	return nil
}
