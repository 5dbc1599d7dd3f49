// Package vfs ties the block store, the inode table and the directory tree
// together into a Session: the unit a shell or a test drives.
//
// A Session is not safe for concurrent use. Many sessions may live in one
// process; they share nothing.
package vfs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/internal/telemetry"
	"github.com/marmos91/blockfs/pkg/directory"
	"github.com/marmos91/blockfs/pkg/disk"
	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/inode"
)

// Metrics receives session-level observations. It extends disk.Metrics so
// one sink covers the whole session.
//
// A nil Metrics is valid and results in zero overhead.
type Metrics interface {
	disk.Metrics

	// ObserveOperation records one session operation and its outcome.
	ObserveOperation(op string, d time.Duration, err error)

	// SetInodes records the number of live inodes.
	SetInodes(n int)
}

type options struct {
	geometry disk.Geometry
	disk     *disk.Disk
	leak     bool
	metrics  Metrics
	now      func() time.Time
}

// Option configures a Session.
type Option func(*options)

// WithGeometry sets the geometry of the blank disk created by New. It is
// also the geometry LoadSession expects the stored image to have.
func WithGeometry(g disk.Geometry) Option {
	return func(o *options) {
		o.geometry = g
	}
}

// WithDisk makes the session use an existing disk. Its geometry wins over
// WithGeometry.
func WithDisk(d *disk.Disk) Option {
	return func(o *options) {
		o.disk = d
	}
}

// WithLeakBlocksOnRemove keeps the blocks of removed files marked used.
func WithLeakBlocksOnRemove(leak bool) Option {
	return func(o *options) {
		o.leak = leak
	}
}

// WithMetrics attaches a metrics sink. nil disables metrics.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides the time source used for inode timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Session owns one disk, one inode table, one directory tree and the
// current working directory.
type Session struct {
	id      string
	disk    *disk.Disk
	inodes  *inode.Table
	tree    *directory.Tree
	cwd     directory.ID
	leak    bool
	metrics Metrics
}

// New creates a session over a blank disk with an empty root directory.
func New(opts ...Option) (*Session, error) {
	o := options{
		geometry: disk.DefaultGeometry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	d := o.disk
	if d == nil {
		var err error
		if d, err = disk.NewWithGeometry(o.geometry); err != nil {
			return nil, err
		}
	}
	if o.metrics != nil {
		d.SetMetrics(o.metrics)
	}

	inodes := inode.NewTable(inode.WithClock(o.now))
	rootIno, err := inodes.Create(directory.RootName, 0, nil, inode.TypeDirectory)
	if err != nil {
		return nil, err
	}
	tree := directory.NewTree(rootIno.ID)

	s := &Session{
		id:      uuid.NewString(),
		disk:    d,
		inodes:  inodes,
		tree:    tree,
		cwd:     tree.Root().ID,
		leak:    o.leak,
		metrics: o.metrics,
	}
	s.observeInodes()

	logger.Debug("session created",
		logger.KeySessionID, s.id,
		logger.KeyBlockSize, d.Geometry().BlockSize,
		logger.KeyTotalBlocks, d.Geometry().TotalBlocks,
	)
	return s, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Disk returns the underlying block store.
func (s *Session) Disk() *disk.Disk {
	return s.disk
}

// Inodes returns the inode table.
func (s *Session) Inodes() *inode.Table {
	return s.inodes
}

// Tree returns the directory tree.
func (s *Session) Tree() *directory.Tree {
	return s.tree
}

// Geometry returns the disk geometry.
func (s *Session) Geometry() disk.Geometry {
	return s.disk.Geometry()
}

// LeaksBlocksOnRemove reports whether removed files keep their blocks.
func (s *Session) LeaksBlocksOnRemove() bool {
	return s.leak
}

// Context returns ctx carrying a LogContext for this session, so callers
// can log with the session fields attached.
func (s *Session) Context(ctx context.Context, command string) context.Context {
	lc := logger.FromContext(ctx)
	if lc == nil || lc.SessionID != s.id {
		lc = logger.NewLogContext(s.id)
	}
	return logger.WithContext(ctx, lc.WithCommand(command, s.Path()))
}

// run executes fn inside a span, then records the outcome in the logs and
// the metrics sink.
func (s *Session) run(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := telemetry.StartFSSpan(ctx, op, append(attrs, telemetry.Session(s.id))...)
	defer span.End()

	lc := logger.FromContext(ctx)
	if lc == nil || lc.SessionID != s.id {
		lc = logger.NewLogContext(s.id).WithCommand(op, s.Path())
	}
	ctx = logger.WithContext(ctx, lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))

	start := time.Now()
	err := fn(ctx)

	if s.metrics != nil {
		s.metrics.ObserveOperation(op, time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, op+" failed",
			logger.KeyError, err,
			logger.KeyErrorCode, fserrors.CodeOf(err).String(),
			logger.KeyDurationMs, logger.Duration(start),
		)
	}
	return err
}

func (s *Session) observeInodes() {
	if s.metrics != nil {
		s.metrics.SetInodes(s.inodes.Len())
	}
}

// cwdDir returns the current directory node. The cwd always names a live
// node because directories are never deleted.
func (s *Session) cwdDir() *directory.Directory {
	d, err := s.tree.Get(s.cwd)
	if err != nil {
		return s.tree.Root()
	}
	return d
}
