// Package badger stores disk images as values in a BadgerDB database, one
// key per image under the "image/" prefix.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/blockfs/pkg/store/image"
)

const keyPrefix = "image/"

// Config holds configuration for the BadgerDB image store.
type Config struct {
	// Dir is the BadgerDB data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the database in memory only.
	InMemory bool
}

// Store is a BadgerDB-backed implementation of image.Store.
type Store struct {
	mu     sync.RWMutex
	db     *badgerdb.DB
	closed bool
}

// New opens (or creates) the database.
func New(cfg Config) (*Store, error) {
	var opts badgerdb.Options
	switch {
	case cfg.InMemory:
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	case cfg.Dir != "":
		opts = badgerdb.DefaultOptions(cfg.Dir)
	default:
		return nil, errors.New("badger image store requires a directory or in-memory mode")
	}
	opts = opts.WithLogger(nil)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

// Save stores data under name in a single transaction.
func (s *Store) Save(_ context.Context, name string, data []byte) error {
	if err := image.ValidateName(name); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return image.ErrStoreClosed
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key(name), data)
	})
}

// Load returns a copy of the image value.
func (s *Store) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, image.ErrStoreClosed
	}

	var data []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key(name))
		if err == badgerdb.ErrKeyNotFound {
			return image.ErrImageNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Exists reports whether name has a value.
func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, image.ErrStoreClosed
	}

	found := false
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key(name))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Delete removes name. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return image.ErrStoreClosed
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key(name))
	})
}

// List returns the names of every stored image.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, image.ErrStoreClosed
	}

	var names []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	return names, err
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// HealthCheck verifies the database is open.
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.db.IsClosed() {
		return image.ErrStoreClosed
	}
	return nil
}

// Size returns the LSM tree and value log sizes in bytes. Both are zero
// once the store is closed.
func (s *Store) Size() (lsm, vlog int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, 0
	}
	return s.db.Size()
}

var _ image.Store = (*Store)(nil)
