package image

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/internal/telemetry"
)

// instrumented decorates a Store with logging, tracing and metrics.
type instrumented struct {
	Store
	storeType string
	metrics   Metrics
}

// Instrument wraps s so every call is logged, traced and measured. m may be nil.
func Instrument(s Store, storeType string, m Metrics) Store {
	return &instrumented{Store: s, storeType: storeType, metrics: m}
}

func (s *instrumented) observe(ctx context.Context, op, name string, bytes int, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(s.storeType, op, bytes, time.Since(start), err)
	}

	args := []any{
		logger.KeyStoreType, s.storeType,
		logger.KeyImage, name,
		logger.KeyBytes, bytes,
		logger.KeyDurationMs, logger.Duration(start),
	}
	switch {
	case errors.Is(err, ErrImageNotFound):
		logger.DebugCtx(ctx, "image not found", args...)
		return
	case err != nil:
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "image "+op+" failed", append(args, logger.KeyError, err)...)
		return
	}
	logger.DebugCtx(ctx, "image "+op, args...)
}

func (s *instrumented) Save(ctx context.Context, name string, data []byte) error {
	ctx, span := telemetry.StartImageSpan(ctx, "save", s.storeType, name)
	defer span.End()

	start := time.Now()
	err := s.Store.Save(ctx, name, data)
	s.observe(ctx, "save", name, len(data), start, err)
	return err
}

func (s *instrumented) Load(ctx context.Context, name string) ([]byte, error) {
	ctx, span := telemetry.StartImageSpan(ctx, "load", s.storeType, name)
	defer span.End()

	start := time.Now()
	data, err := s.Store.Load(ctx, name)
	s.observe(ctx, "load", name, len(data), start, err)
	return data, err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	ctx, span := telemetry.StartImageSpan(ctx, "delete", s.storeType, name)
	defer span.End()

	start := time.Now()
	err := s.Store.Delete(ctx, name)
	s.observe(ctx, "delete", name, 0, start, err)
	return err
}

// Unwrap returns the decorated store.
func (s *instrumented) Unwrap() Store {
	return s.Store
}
