// Package disk provides the fixed-size, block-addressable backing store.
//
// A Disk is a pool of TotalBlocks blocks of BlockSize bytes each, plus a
// free/used bitmap. Allocation is first-fit: the lowest free index is always
// returned. Blocks carry no owner pointer; ownership is tracked by whichever
// inode holds the index in its block list.
package disk

import (
	"fmt"
	"sync"

	"github.com/marmos91/blockfs/pkg/fserrors"
)

const (
	// BlockSize is the default size of a single block in bytes.
	BlockSize = 512

	// TotalBlocks is the default number of blocks on a disk.
	TotalBlocks = 100
)

// Geometry describes the shape of a disk.
type Geometry struct {
	// BlockSize is the size of one block in bytes.
	BlockSize int

	// TotalBlocks is the number of blocks on the disk.
	TotalBlocks int
}

// DefaultGeometry returns the BlockSize x TotalBlocks geometry.
func DefaultGeometry() Geometry {
	return Geometry{BlockSize: BlockSize, TotalBlocks: TotalBlocks}
}

// Validate checks that both dimensions are positive.
func (g Geometry) Validate() error {
	if g.BlockSize <= 0 {
		return fserrors.NewInvalidArgumentError(fmt.Sprintf("block size must be positive, got %d", g.BlockSize))
	}
	if g.TotalBlocks <= 0 {
		return fserrors.NewInvalidArgumentError(fmt.Sprintf("total blocks must be positive, got %d", g.TotalBlocks))
	}
	return nil
}

// ImageSize returns the size in bytes of a persisted image for this geometry.
func (g Geometry) ImageSize() int64 {
	return int64(g.BlockSize) * int64(g.TotalBlocks)
}

// BlocksFor returns how many blocks are needed to hold n bytes.
func (g Geometry) BlocksFor(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + g.BlockSize - 1) / g.BlockSize
}

// Metrics receives allocation events from a Disk.
//
// A nil Metrics is valid and results in zero overhead.
type Metrics interface {
	// ObserveAllocate records an allocation attempt and whether it succeeded.
	ObserveAllocate(ok bool)

	// ObserveFree records a block being returned to the pool.
	ObserveFree()

	// SetUsage records the current number of used blocks out of total.
	SetUsage(used, total int)
}

// Disk is an in-memory block store with a first-fit free bitmap.
//
// All methods are safe for concurrent use; the mutex exists so a metrics
// scrape can read usage while a session mutates the disk.
type Disk struct {
	mu      sync.Mutex
	geo     Geometry
	blocks  [][]byte
	used    []bool
	nused   int
	metrics Metrics
}

// New creates a zeroed disk with the default geometry and every block free.
func New() *Disk {
	d, _ := NewWithGeometry(DefaultGeometry())
	return d
}

// NewWithGeometry creates a zeroed disk with the given geometry.
func NewWithGeometry(g Geometry) (*Disk, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	blocks := make([][]byte, g.TotalBlocks)
	for i := range blocks {
		blocks[i] = make([]byte, g.BlockSize)
	}

	return &Disk{
		geo:    g,
		blocks: blocks,
		used:   make([]bool, g.TotalBlocks),
	}, nil
}

// SetMetrics attaches a metrics sink. Passing nil disables metrics.
func (d *Disk) SetMetrics(m Metrics) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.metrics = m
	if m != nil {
		m.SetUsage(d.nused, d.geo.TotalBlocks)
	}
}

// Geometry returns the disk geometry.
func (d *Disk) Geometry() Geometry {
	return d.geo
}

// Allocate marks the lowest free block as used and returns its index.
// Returns a NoSpace error when every block is in use.
func (d *Disk) Allocate() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, inUse := range d.used {
		if !inUse {
			d.used[i] = true
			d.nused++
			d.observeAllocate(true)
			return i, nil
		}
	}

	d.observeAllocate(false)
	return 0, fserrors.NewNoSpaceError(1, 0)
}

// Free returns a block to the pool. The block's content is left as is.
//
// Freeing an index outside the disk, or one that is already free, is
// rejected with InvalidArgument and leaves the bitmap unchanged.
func (d *Disk) Free(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkIndex(index); err != nil {
		return err
	}
	if !d.used[index] {
		return fserrors.NewInvalidArgumentError(fmt.Sprintf("double free of block %d", index))
	}

	d.used[index] = false
	d.nused--
	if d.metrics != nil {
		d.metrics.ObserveFree()
		d.metrics.SetUsage(d.nused, d.geo.TotalBlocks)
	}
	return nil
}

// Write copies min(len(data), BlockSize) bytes into the block at offset 0.
// Bytes beyond the block size are silently discarded; bytes of the block
// past len(data) keep their previous content.
func (d *Disk) Write(index int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkIndex(index); err != nil {
		return err
	}

	copy(d.blocks[index], data)
	return nil
}

// Read returns a copy of the whole block, trailing padding included.
// Callers needing the logical length truncate with the owning inode's size.
func (d *Disk) Read(index int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkIndex(index); err != nil {
		return nil, err
	}

	out := make([]byte, d.geo.BlockSize)
	copy(out, d.blocks[index])
	return out, nil
}

// IsFree reports whether the block is free. Out-of-range indices are not free.
func (d *Disk) IsFree(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return index >= 0 && index < len(d.used) && !d.used[index]
}

// UsedCount returns the number of allocated blocks.
func (d *Disk) UsedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nused
}

// FreeCount returns the number of free blocks.
func (d *Disk) FreeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.geo.TotalBlocks - d.nused
}

// Allocated returns the indices of all used blocks in ascending order.
func (d *Disk) Allocated() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]int, 0, d.nused)
	for i, inUse := range d.used {
		if inUse {
			out = append(out, i)
		}
	}
	return out
}

func (d *Disk) checkIndex(index int) error {
	if index < 0 || index >= d.geo.TotalBlocks {
		return fserrors.NewInvalidArgumentError(
			fmt.Sprintf("block index %d out of range [0, %d)", index, d.geo.TotalBlocks))
	}
	return nil
}

// observeAllocate must be called with d.mu held.
func (d *Disk) observeAllocate(ok bool) {
	if d.metrics == nil {
		return
	}
	d.metrics.ObserveAllocate(ok)
	if ok {
		d.metrics.SetUsage(d.nused, d.geo.TotalBlocks)
	}
}
