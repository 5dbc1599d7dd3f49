package config

import (
	"context"
	"fmt"

	"github.com/marmos91/blockfs/pkg/metrics"
	"github.com/marmos91/blockfs/pkg/store/image"
	imagebadger "github.com/marmos91/blockfs/pkg/store/image/badger"
	imagefile "github.com/marmos91/blockfs/pkg/store/image/file"
	imagememory "github.com/marmos91/blockfs/pkg/store/image/memory"
	images3 "github.com/marmos91/blockfs/pkg/store/image/s3"
)

// CreateImageStore builds the image store selected by cfg.Backend, wrapped
// with logging, tracing and the given metrics (which may be nil).
func CreateImageStore(ctx context.Context, cfg ImageConfig, m image.Metrics) (image.Store, error) {
	var (
		store image.Store
		err   error
	)

	switch cfg.Backend {
	case "memory":
		store = imagememory.New()
	case "file", "":
		store, err = imagefile.New(imagefile.DefaultConfig(cfg.File.Dir))
	case "badger":
		var bs *imagebadger.Store
		if bs, err = imagebadger.New(imagebadger.Config{Dir: cfg.Badger.Dir}); err == nil {
			metrics.ObserveBadger(bs)
			store = bs
		}
	case "s3":
		store, err = createS3ImageStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown image backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s image store: %w", cfg.Backend, err)
	}

	return image.Instrument(store, cfg.Backend, m), nil
}

func createS3ImageStore(ctx context.Context, cfg S3ImageConfig) (image.Store, error) {
	client, err := images3.NewClient(ctx, cfg.Endpoint, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey, cfg.ForcePathStyle)
	if err != nil {
		return nil, err
	}
	return images3.New(client, images3.Config{
		Bucket:  cfg.Bucket,
		Prefix:  cfg.Prefix,
		Timeout: cfg.Timeout,
	})
}
