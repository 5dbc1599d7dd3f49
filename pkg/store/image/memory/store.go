// Package memory provides an in-memory image store for tests and throwaway
// sessions.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/marmos91/blockfs/pkg/store/image"
)

// Store is an in-memory implementation of image.Store.
type Store struct {
	mu     sync.RWMutex
	images map[string][]byte
	closed bool
}

// New creates a new in-memory image store.
func New() *Store {
	return &Store{images: make(map[string][]byte)}
}

// Save stores a copy of data under name.
func (s *Store) Save(_ context.Context, name string, data []byte) error {
	if err := image.ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return image.ErrStoreClosed
	}

	s.images[name] = bytes.Clone(data)
	return nil
}

// Load returns a copy of the image stored under name.
func (s *Store) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, image.ErrStoreClosed
	}

	data, ok := s.images[name]
	if !ok {
		return nil, image.ErrImageNotFound
	}
	return bytes.Clone(data), nil
}

// Exists reports whether name is stored.
func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, image.ErrStoreClosed
	}

	_, ok := s.images[name]
	return ok, nil
}

// Delete removes name.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return image.ErrStoreClosed
	}

	delete(s.images, name)
	return nil
}

// Close marks the store as closed and drops every image.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.images = nil
	return nil
}

// HealthCheck fails only once the store is closed.
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return image.ErrStoreClosed
	}
	return nil
}

// Len returns the number of stored images.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

var _ image.Store = (*Store)(nil)
