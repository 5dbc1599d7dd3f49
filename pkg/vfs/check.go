package vfs

import (
	"context"
	"fmt"
	"sort"

	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/pkg/inode"
)

// Usage summarizes the space and metadata counters of a session.
type Usage struct {
	BlockSize   int `json:"block_size" yaml:"block_size"`
	TotalBlocks int `json:"total_blocks" yaml:"total_blocks"`
	UsedBlocks  int `json:"used_blocks" yaml:"used_blocks"`
	FreeBlocks  int `json:"free_blocks" yaml:"free_blocks"`
	Inodes      int `json:"inodes" yaml:"inodes"`
	Directories int `json:"directories" yaml:"directories"`
}

// Usage returns the current counters.
func (s *Session) Usage() Usage {
	g := s.disk.Geometry()
	return Usage{
		BlockSize:   g.BlockSize,
		TotalBlocks: g.TotalBlocks,
		UsedBlocks:  s.disk.UsedCount(),
		FreeBlocks:  s.disk.FreeCount(),
		Inodes:      s.inodes.Len(),
		Directories: s.tree.Len(),
	}
}

// Violation kinds reported by Check.
const (
	ViolationSharedBlock   = "shared_block"
	ViolationFreeClaimed   = "free_block_claimed"
	ViolationOrphanBlock   = "orphan_block"
	ViolationDanglingEntry = "dangling_entry"
	ViolationBlockCount    = "block_count"
)

// Violation is one inconsistency found by Check.
type Violation struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	return v.Kind + ": " + v.Message
}

// Check cross-validates the disk bitmap, the inode table and the directory
// tree. It returns nil when the session is consistent.
//
// Checked invariants:
//   - no block is claimed by two inodes (or twice by one)
//   - every claimed block is marked used
//   - every used block is claimed, unless the session leaks blocks on remove
//   - every directory entry names a live inode
//   - every file inode holds exactly ceil(size/BlockSize) blocks
func (s *Session) Check(ctx context.Context) []Violation {
	var out []Violation
	_ = s.run(ctx, "fsck", nil, func(ctx context.Context) error {
		out = s.check()
		if len(out) == 0 {
			logger.DebugCtx(ctx, "consistency check passed")
			return nil
		}
		for _, v := range out {
			logger.WarnCtx(ctx, "consistency violation", "kind", v.Kind, "detail", v.Message)
		}
		return nil
	})
	return out
}

func (s *Session) check() []Violation {
	var out []Violation
	add := func(kind, format string, args ...any) {
		out = append(out, Violation{Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	owners := s.inodes.Owners()
	claimed := make([]int, 0, len(owners))
	for b := range owners {
		claimed = append(claimed, b)
	}
	sort.Ints(claimed)

	for _, b := range claimed {
		ids := owners[b]
		if len(ids) > 1 {
			add(ViolationSharedBlock, "block %d is claimed by inodes %v", b, ids)
		}
		if s.disk.IsFree(b) {
			add(ViolationFreeClaimed, "block %d owned by inode #%d is not marked used", b, ids[0])
		}
	}

	if !s.leak {
		for _, b := range s.disk.Allocated() {
			if _, ok := owners[b]; !ok {
				add(ViolationOrphanBlock, "block %d is marked used but owned by no inode", b)
			}
		}
	}

	for _, dir := range s.tree.All() {
		for _, e := range dir.ListEntries() {
			if _, err := s.inodes.Get(e.InodeID); err != nil {
				add(ViolationDanglingEntry, "entry %q in directory %q points at missing inode #%d", e.Name, dir.Name, e.InodeID)
			}
		}
	}

	g := s.disk.Geometry()
	for _, ino := range s.inodes.All() {
		if ino.Type != inode.TypeFile {
			continue
		}
		if want := g.BlocksFor(ino.Size); len(ino.Blocks) != want {
			add(ViolationBlockCount, "inode #%d (%s) has %d blocks for %d bytes, expected %d",
				ino.ID, ino.Name, len(ino.Blocks), ino.Size, want)
		}
	}
	return out
}
