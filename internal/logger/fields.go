package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these keys consistently
// so log lines from the shell, the session and the image stores can be
// queried together.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Session
	KeySessionID = "session_id"
	KeyCommand   = "command"
	KeyCwd       = "cwd"

	// Namespace
	KeyPath     = "path"
	KeyFilename = "filename"
	KeyType     = "type"
	KeySize     = "size"
	KeyEntries  = "entries"

	// Blocks and inodes
	KeyInodeID     = "inode_id"
	KeyBlock       = "block"
	KeyBlocks      = "blocks"
	KeyBlocksUsed  = "blocks_used"
	KeyBlocksFree  = "blocks_free"
	KeyBlockSize   = "block_size"
	KeyTotalBlocks = "total_blocks"

	// Image stores
	KeyImage     = "image"
	KeyStoreType = "store_type"
	KeyBucket    = "bucket"
	KeyKey       = "key"
	KeyRegion    = "region"
	KeyBytes     = "bytes"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
)

// SessionID returns a session_id attribute.
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// Command returns a command attribute.
func Command(name string) slog.Attr {
	return slog.String(KeyCommand, name)
}

// Path returns a path attribute.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Filename returns a filename attribute.
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// Size returns a size attribute in bytes.
func Size(n int) slog.Attr {
	return slog.Int(KeySize, n)
}

// InodeID returns an inode_id attribute.
func InodeID(id uint64) slog.Attr {
	return slog.Uint64(KeyInodeID, id)
}

// Block returns a block index attribute.
func Block(index int) slog.Attr {
	return slog.Int(KeyBlock, index)
}

// Blocks returns a block list attribute.
func Blocks(indices []int) slog.Attr {
	return slog.Any(KeyBlocks, indices)
}

// Image returns an image name attribute.
func Image(name string) slog.Attr {
	return slog.String(KeyImage, name)
}

// StoreType returns a store_type attribute.
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// DurationMs returns a duration attribute in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns an error attribute, or an empty attribute for a nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
