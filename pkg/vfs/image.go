package vfs

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/internal/telemetry"
	"github.com/marmos91/blockfs/pkg/disk"
	"github.com/marmos91/blockfs/pkg/store/image"
)

// SaveImage writes the raw disk image to store under name. Only block
// contents are persisted; the bitmap, inodes and directories are not.
func (s *Session) SaveImage(ctx context.Context, store image.Store, name string) error {
	attrs := []attribute.KeyValue{telemetry.Image(name)}
	return s.run(ctx, "save", attrs, func(ctx context.Context) error {
		data := s.disk.Image()
		if err := store.Save(ctx, name, data); err != nil {
			return fmt.Errorf("failed to save image %q: %w", name, err)
		}
		logger.InfoCtx(ctx, "image saved", logger.KeyImage, name, logger.KeyBytes, len(data))
		return nil
	})
}

// LoadSession loads the image stored under name and starts a session on a
// disk holding its contents. The image must match the configured geometry
// exactly. Every block of the loaded disk is free and the directory tree is
// empty, as nothing but raw block contents is persisted.
//
// A missing image yields an error wrapping image.ErrImageNotFound.
func LoadSession(ctx context.Context, store image.Store, name string, opts ...Option) (*Session, error) {
	o := options{geometry: disk.DefaultGeometry()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := telemetry.StartFSSpan(ctx, "load", telemetry.Image(name))
	defer span.End()

	data, err := store.Load(ctx, name)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to load image %q: %w", name, err)
	}

	d, err := disk.Decode(o.geometry, data)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to decode image %q: %w", name, err)
	}

	s, err := New(append(opts, WithDisk(d))...)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "image loaded",
		logger.KeySessionID, s.id,
		logger.KeyImage, name,
		logger.KeyBytes, len(data),
	)
	return s, nil
}
