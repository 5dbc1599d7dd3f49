// Package file stores disk images as plain files, one per name.
//
// The file holds the raw image bytes, so a saved image can be inspected with
// ordinary tools (hexdump, cmp). The layout is blocks in index order with no
// header, the fs_image.bin format.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/marmos91/blockfs/pkg/store/image"
)

// Config holds configuration for the file image store.
type Config struct {
	// Dir is the directory holding image files.
	Dir string

	// CreateDir creates Dir if it doesn't exist. Default: true via DefaultConfig.
	CreateDir bool

	// FileMode is the permission mode for image files. Default: 0644
	FileMode os.FileMode
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{Dir: dir, CreateDir: true, FileMode: 0644}
}

// Store is a filesystem-backed implementation of image.Store.
type Store struct {
	mu       sync.RWMutex
	dir      string
	fileMode os.FileMode
	closed   bool
}

// New creates a file image store.
func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("image directory is required")
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	if cfg.CreateDir {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create image directory: %w", err)
		}
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image path %s is not a directory", cfg.Dir)
	}

	return &Store{dir: cfg.Dir, fileMode: cfg.FileMode}, nil
}

// Path returns the file backing name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save writes data to a temporary file in the same directory and renames
// it over the target, so readers never observe a partial image.
func (s *Store) Save(_ context.Context, name string, data []byte) error {
	if err := image.ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return image.ErrStoreClosed
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Chmod(tmpPath, s.fileMode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, s.Path(name)); err != nil {
		cleanup()
		return fmt.Errorf("failed to commit image: %w", err)
	}
	return nil
}

// Load reads the image file.
func (s *Store) Load(_ context.Context, name string) ([]byte, error) {
	if err := image.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, image.ErrStoreClosed
	}

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, image.ErrImageNotFound
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether the image file exists.
func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	if err := image.ValidateName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, image.ErrStoreClosed
	}

	info, err := os.Stat(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Delete removes the image file.
func (s *Store) Delete(_ context.Context, name string) error {
	if err := image.ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return image.ErrStoreClosed
	}

	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// HealthCheck verifies the image directory is still a writable directory.
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return image.ErrStoreClosed
	}

	f, err := os.CreateTemp(s.dir, ".healthcheck-*")
	if err != nil {
		return fmt.Errorf("image directory not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

var _ image.Store = (*Store)(nil)
