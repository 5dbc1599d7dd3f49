// Package image defines where whole-disk images are persisted.
//
// An image is the flat byte layout produced by disk.(*Disk).Image: exactly
// TotalBlocks*BlockSize bytes with no header. Stores treat it as an opaque
// value addressed by name.
package image

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors returned by Store implementations.
var (
	// ErrImageNotFound is returned by Load when no image exists under the name.
	ErrImageNotFound = errors.New("image not found")

	// ErrStoreClosed is returned when operations are attempted on a closed store.
	ErrStoreClosed = errors.New("image store is closed")
)

// Store persists named disk images.
type Store interface {
	// Save writes data under name, replacing any previous image.
	Save(ctx context.Context, name string, data []byte) error

	// Load returns a copy of the image stored under name.
	// Returns ErrImageNotFound if it doesn't exist.
	Load(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether an image is stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes the image. Returns nil if it doesn't exist.
	Delete(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close() error

	// HealthCheck verifies the store is accessible and operational.
	HealthCheck(ctx context.Context) error
}

// Metrics observes store calls. A nil Metrics is valid and records nothing.
type Metrics interface {
	ObserveOperation(storeType, op string, bytes int, d time.Duration, err error)
}

// ValidateName rejects names that cannot be used as a file name, a badger
// key suffix and an S3 object name alike.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("invalid image name: empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid image name %q", name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("invalid image name %q: contains a path separator or NUL", name)
	}
	return nil
}
