package vfs

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/internal/telemetry"
	"github.com/marmos91/blockfs/pkg/directory"
	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/inode"
)

// ============================================================================
// Directory Operations
// ============================================================================

// Mkdir creates a subdirectory of the current directory and returns a copy
// of its inode.
func (s *Session) Mkdir(ctx context.Context, name string) (*inode.Inode, error) {
	var out *inode.Inode
	err := s.run(ctx, "mkdir", []attribute.KeyValue{telemetry.Name(name)}, func(ctx context.Context) error {
		cwd := s.cwdDir()
		if err := s.checkNewName(cwd, name); err != nil {
			return err
		}

		ino, err := s.inodes.Create(name, 0, nil, inode.TypeDirectory)
		if err != nil {
			return err
		}
		if _, err := s.tree.Mkdir(cwd.ID, name, ino.ID); err != nil {
			_, _ = s.inodes.Remove(ino.ID)
			return err
		}
		s.observeInodes()

		logger.InfoCtx(ctx, "directory created", logger.KeyFilename, name, logger.KeyInodeID, uint64(ino.ID))
		out = ino.Clone()
		return nil
	})
	return out, err
}

// ChangeDir moves the current directory into the named subdirectory, or to
// the parent for "..". moved is false, with no error, when ".." is asked at
// the root.
func (s *Session) ChangeDir(ctx context.Context, name string) (moved bool, err error) {
	err = s.run(ctx, "cd", []attribute.KeyValue{telemetry.Name(name)}, func(ctx context.Context) error {
		id, ok, err := s.cwdDir().ChangeDir(name)
		if err != nil {
			return err
		}
		if !ok {
			logger.DebugCtx(ctx, "already at root")
			return nil
		}
		s.cwd = id
		moved = true
		logger.DebugCtx(ctx, "directory changed", logger.KeyPath, s.Path())
		return nil
	})
	return moved, err
}

// Cwd returns the current directory node.
func (s *Session) Cwd() *directory.Directory {
	return s.cwdDir()
}

// Path returns the absolute path of the current directory, e.g. "/root/docs".
func (s *Session) Path() string {
	p, err := s.tree.Path(s.cwd)
	if err != nil {
		return "/" + directory.RootName
	}
	return p
}

// AtRoot reports whether the current directory is the root.
func (s *Session) AtRoot() bool {
	return s.cwd == s.tree.Root().ID
}

// List returns the entries of the current directory sorted by name.
func (s *Session) List(ctx context.Context) ([]directory.DirEntry, error) {
	var out []directory.DirEntry
	err := s.run(ctx, "ls", nil, func(context.Context) error {
		out = s.cwdDir().ListEntries()
		return nil
	})
	return out, err
}

// Stat returns a copy of the inode bound to name in the current directory.
func (s *Session) Stat(ctx context.Context, name string) (*inode.Inode, error) {
	var out *inode.Inode
	err := s.run(ctx, "stat", []attribute.KeyValue{telemetry.Name(name)}, func(context.Context) error {
		ino, err := s.lookup(name)
		if err != nil {
			return err
		}
		out = ino.Clone()
		return nil
	})
	return out, err
}

// ============================================================================
// File Operations
// ============================================================================

// CreateFile stores data in freshly allocated blocks and binds name to a new
// file inode in the current directory.
//
// When the disk cannot hold data, the blocks taken so far are released and a
// NoSpace error is returned; nothing is created.
func (s *Session) CreateFile(ctx context.Context, name string, data []byte) (*inode.Inode, error) {
	var out *inode.Inode
	attrs := []attribute.KeyValue{telemetry.Name(name), telemetry.Size(len(data))}
	err := s.run(ctx, "create", attrs, func(ctx context.Context) error {
		cwd := s.cwdDir()
		if err := s.checkNewName(cwd, name); err != nil {
			return err
		}

		blocks, err := s.store(data)
		if err != nil {
			return err
		}

		ino, err := s.inodes.Create(name, len(data), blocks, inode.TypeFile)
		if err != nil {
			s.release(ctx, blocks)
			return err
		}
		if err := cwd.AddEntry(name, ino.ID, false); err != nil {
			_, _ = s.inodes.Remove(ino.ID)
			s.release(ctx, blocks)
			return err
		}
		s.observeInodes()

		logger.InfoCtx(ctx, "file created",
			logger.KeyFilename, name,
			logger.KeyInodeID, uint64(ino.ID),
			logger.KeySize, len(data),
			logger.KeyBlocks, blocks,
		)
		out = ino.Clone()
		return nil
	})
	return out, err
}

// WriteFile replaces the whole content of an existing file. New blocks are
// allocated before the old ones are freed, so a NoSpace failure leaves the
// previous content intact.
func (s *Session) WriteFile(ctx context.Context, name string, data []byte) (*inode.Inode, error) {
	var out *inode.Inode
	attrs := []attribute.KeyValue{telemetry.Name(name), telemetry.Size(len(data))}
	err := s.run(ctx, "write", attrs, func(ctx context.Context) error {
		ino, err := s.lookupFile(name)
		if err != nil {
			return err
		}

		blocks, err := s.store(data)
		if err != nil {
			return err
		}

		old := slices.Clone(ino.Blocks)
		if _, err := s.inodes.Update(ino.ID, len(data), blocks); err != nil {
			s.release(ctx, blocks)
			return err
		}
		s.release(ctx, old)

		logger.InfoCtx(ctx, "file written",
			logger.KeyFilename, name,
			logger.KeySize, len(data),
			logger.KeyBlocks, blocks,
		)
		out = ino.Clone()
		return nil
	})
	return out, err
}

// ReadFile reconstructs the content of a file from its blocks.
func (s *Session) ReadFile(ctx context.Context, name string) ([]byte, error) {
	var out []byte
	err := s.run(ctx, "cat", []attribute.KeyValue{telemetry.Name(name)}, func(context.Context) error {
		ino, err := s.lookupFile(name)
		if err != nil {
			return err
		}
		out, err = s.content(ino)
		return err
	})
	return out, err
}

// Remove unbinds a file from the current directory, deletes its inode and,
// unless the session leaks blocks on remove, frees its blocks. Directories
// are rejected with IsDirectory. The removed inode is returned.
func (s *Session) Remove(ctx context.Context, name string) (*inode.Inode, error) {
	var out *inode.Inode
	err := s.run(ctx, "rm", []attribute.KeyValue{telemetry.Name(name)}, func(ctx context.Context) error {
		if _, err := s.lookupFile(name); err != nil {
			return err
		}

		entry, err := s.cwdDir().RemoveEntry(name)
		if err != nil {
			return err
		}
		ino, err := s.inodes.Remove(entry.InodeID)
		if err != nil {
			return err
		}
		s.observeInodes()

		if s.leak {
			logger.DebugCtx(ctx, "leaving blocks allocated", logger.KeyBlocks, ino.Blocks)
		} else {
			s.release(ctx, ino.Blocks)
		}

		logger.InfoCtx(ctx, "file removed", logger.KeyFilename, name, logger.KeyInodeID, uint64(ino.ID))
		out = ino
		return nil
	})
	return out, err
}

// Copy duplicates the file src into dst within the current directory. The
// copy gets its own blocks and a new inode ID; every other inode field,
// timestamps included, is carried over from src.
func (s *Session) Copy(ctx context.Context, src, dst string) (*inode.Inode, error) {
	var out *inode.Inode
	attrs := []attribute.KeyValue{telemetry.Name(src), attribute.String("fs.target", dst)}
	err := s.run(ctx, "cp", attrs, func(ctx context.Context) error {
		srcIno, err := s.lookupFile(src)
		if err != nil {
			return err
		}
		cwd := s.cwdDir()
		if err := s.checkNewName(cwd, dst); err != nil {
			return err
		}

		data, err := s.content(srcIno)
		if err != nil {
			return err
		}
		blocks, err := s.store(data)
		if err != nil {
			return err
		}

		c := s.inodes.Adopt(srcIno)
		c.Name = dst
		c.Blocks = blocks
		if err := cwd.AddEntry(dst, c.ID, false); err != nil {
			_, _ = s.inodes.Remove(c.ID)
			s.release(ctx, blocks)
			return err
		}
		s.observeInodes()

		logger.InfoCtx(ctx, "file copied",
			logger.KeyFilename, dst,
			logger.KeyInodeID, uint64(c.ID),
			logger.KeyBlocks, blocks,
		)
		out = c.Clone()
		return nil
	})
	return out, err
}

// ============================================================================
// Helpers
// ============================================================================

// checkNewName validates name and makes sure it is not bound in dir yet.
func (s *Session) checkNewName(dir *directory.Directory, name string) error {
	if err := directory.ValidateName(name); err != nil {
		return err
	}
	if dir.HasEntry(name) {
		return fserrors.NewAlreadyExistsError(name)
	}
	return nil
}

// lookup resolves name in the current directory to its live inode.
func (s *Session) lookup(name string) (*inode.Inode, error) {
	entry, ok := s.cwdDir().GetEntry(name)
	if !ok {
		return nil, fserrors.NewNotFoundError(name, "entry")
	}
	return s.inodes.Get(entry.InodeID)
}

// lookupFile is lookup restricted to regular files.
func (s *Session) lookupFile(name string) (*inode.Inode, error) {
	ino, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if ino.IsDir() {
		return nil, fserrors.NewIsDirectoryError(name)
	}
	return ino, nil
}

// store allocates enough blocks for data and writes it, one BlockSize chunk
// per block. On failure every block taken is released.
func (s *Session) store(data []byte) ([]int, error) {
	g := s.disk.Geometry()
	needed := g.BlocksFor(len(data))
	if free := s.disk.FreeCount(); needed > free {
		return nil, fserrors.NewNoSpaceError(needed, free)
	}

	blocks := make([]int, 0, needed)
	for i := 0; i < needed; i++ {
		b, err := s.disk.Allocate()
		if err != nil {
			s.release(context.Background(), blocks)
			return nil, err
		}
		blocks = append(blocks, b)

		end := min((i+1)*g.BlockSize, len(data))
		if err := s.disk.Write(b, data[i*g.BlockSize:end]); err != nil {
			s.release(context.Background(), blocks)
			return nil, err
		}
	}
	return blocks, nil
}

// release frees blocks, logging instead of failing: a block that cannot be
// freed is reported by Check.
func (s *Session) release(ctx context.Context, blocks []int) {
	for _, b := range blocks {
		if err := s.disk.Free(b); err != nil {
			logger.WarnCtx(ctx, "failed to free block", logger.KeyBlock, b, logger.KeyError, err)
		}
	}
}

// content concatenates the blocks of ino truncated to its size.
func (s *Session) content(ino *inode.Inode) ([]byte, error) {
	out := make([]byte, 0, ino.Size)
	for _, b := range ino.Blocks {
		blk, err := s.disk.Read(b)
		if err != nil {
			return nil, fmt.Errorf("inode #%d: %w", ino.ID, err)
		}
		out = append(out, blk...)
	}
	if len(out) < ino.Size {
		return nil, fserrors.NewInvalidArgumentError(
			fmt.Sprintf("inode #%d claims %d bytes but its blocks hold %d", ino.ID, ino.Size, len(out)))
	}
	return out[:ino.Size], nil
}
