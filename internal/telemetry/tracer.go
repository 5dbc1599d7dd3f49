package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for filesystem spans.
const (
	AttrOperation = attribute.Key("fs.operation")
	AttrSession   = attribute.Key("fs.session")
	AttrPath      = attribute.Key("fs.path")
	AttrName      = attribute.Key("fs.name")
	AttrSize      = attribute.Key("fs.size")
	AttrInode     = attribute.Key("fs.inode")
	AttrBlocks    = attribute.Key("fs.blocks")
	AttrImage     = attribute.Key("image.name")
	AttrStoreType = attribute.Key("image.store_type")
)

// Operation returns the fs.operation attribute.
func Operation(op string) attribute.KeyValue { return AttrOperation.String(op) }

// Session returns the fs.session attribute.
func Session(id string) attribute.KeyValue { return AttrSession.String(id) }

// Path returns the fs.path attribute.
func Path(p string) attribute.KeyValue { return AttrPath.String(p) }

// Name returns the fs.name attribute.
func Name(n string) attribute.KeyValue { return AttrName.String(n) }

// Size returns the fs.size attribute.
func Size(n int) attribute.KeyValue { return AttrSize.Int(n) }

// Inode returns the fs.inode attribute.
func Inode(id uint64) attribute.KeyValue { return AttrInode.Int64(int64(id)) }

// Blocks returns the fs.blocks attribute.
func Blocks(indices []int) attribute.KeyValue { return AttrBlocks.IntSlice(indices) }

// Image returns the image.name attribute.
func Image(name string) attribute.KeyValue { return AttrImage.String(name) }

// StoreType returns the image.store_type attribute.
func StoreType(t string) attribute.KeyValue { return AttrStoreType.String(t) }

// StartFSSpan starts an internal span for a session operation, named
// "fs.<operation>".
func StartFSSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Operation(operation)}, attrs...)
	return StartSpan(ctx, "fs."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(all...),
	)
}

// StartImageSpan starts a client span for an image store call, named
// "image.<operation>".
func StartImageSpan(ctx context.Context, operation, storeType, name string) (context.Context, trace.Span) {
	return StartSpan(ctx, "image."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(StoreType(storeType), Image(name)),
	)
}
